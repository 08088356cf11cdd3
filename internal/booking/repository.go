package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrBookingConflict = errors.New("trainer already booked for this interval")
	ErrNotCancellable  = errors.New("booking is not in a cancellable state")
	ErrNotConfirmed    = errors.New("booking is not confirmed")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, user_id, player_id, option_id, trainer_id, subscription_id, status,
	scheduled_at, duration_minutes, price_paid, pay_in_person, payment_deadline,
	cancelled_at, cancellation_reason, notes, created_at, updated_at`

// CreateBooking inserts b after verifying no active booking for the same
// trainer overlaps the requested interval. The advisory lock serializes
// concurrent creations per trainer so the check and the insert are atomic:
// of two racing requests for overlapping slots, exactly one wins.
func (r *repository) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(b.TrainerID)); err != nil {
		return nil, err
	}

	end := b.End()

	var conflicts int
	err = tx.GetContext(ctx, &conflicts, `
		SELECT COUNT(*)
		FROM bookings
		WHERE trainer_id = $1
		  AND status IN ('UNPAID', 'CONFIRMED')
		  AND scheduled_at < $2
		  AND scheduled_at + (duration_minutes * interval '1 minute') > $3
	`, b.TrainerID, end, b.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return nil, ErrBookingConflict
	}

	created := &Booking{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO bookings (user_id, player_id, option_id, trainer_id, status,
			scheduled_at, duration_minutes, price_paid, notes)
		VALUES ($1, $2, $3, $4, 'UNPAID', $5, $6, $7, $8)
		RETURNING `+bookingColumns+`
	`, b.UserID, b.PlayerID, b.OptionID, b.TrainerID, b.ScheduledAt, b.DurationMinutes, b.PricePaid, b.Notes).StructScan(created)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	b := &Booking{}
	err := r.db.GetContext(ctx, b, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

const detailColumns = `b.id, b.user_id, b.player_id, b.option_id, b.trainer_id, b.subscription_id,
	b.status, b.scheduled_at, b.duration_minutes, b.price_paid, b.pay_in_person,
	b.payment_deadline, b.cancelled_at, b.cancellation_reason, b.notes, b.created_at, b.updated_at,
	st.name AS session_type_name, t.name AS trainer_name, p.name AS player_name`

const detailJoins = `
	FROM bookings b
	JOIN session_type_options o ON o.id = b.option_id
	JOIN session_types st ON st.id = o.session_type_id
	JOIN trainers t ON t.id = b.trainer_id
	LEFT JOIN players p ON p.id = b.player_id`

func (r *repository) ListByUser(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+detailColumns+detailJoins+`
		WHERE b.user_id = $1
		ORDER BY b.scheduled_at DESC
	`, userID)
	return bookings, err
}

func (r *repository) ListByTrainer(ctx context.Context, trainerID int) ([]BookingWithDetails, error) {
	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+detailColumns+detailJoins+`
		WHERE b.trainer_id = $1
		ORDER BY b.scheduled_at ASC
	`, trainerID)
	return bookings, err
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = $1
		ORDER BY scheduled_at ASC
	`, status)
	return bookings, err
}

func (r *repository) SetPayInPerson(ctx context.Context, bookingID int, deadline time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET pay_in_person = TRUE, payment_deadline = $1, updated_at = NOW()
		WHERE id = $2
	`, deadline, bookingID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) Cancel(ctx context.Context, id int, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'CANCELLED', cancelled_at = NOW(), cancellation_reason = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ('UNPAID', 'CONFIRMED')
	`, reason, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNotCancellable
	}

	return nil
}

// ForceCancel cancels regardless of current state. Used by the refund
// cascade, which may land on bookings already COMPLETED.
func (r *repository) ForceCancel(ctx context.Context, id int, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'CANCELLED',
		    cancelled_at = COALESCE(cancelled_at, NOW()),
		    cancellation_reason = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, reason, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) MarkNoShow(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'NO_SHOW', updated_at = NOW()
		WHERE id = $1 AND status = 'CONFIRMED'
	`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNotConfirmed
	}

	return nil
}

// OverrideStatus applies an unconstrained operator correction. Moving to
// CANCELLED backfills the cancellation timestamp if none was recorded.
func (r *repository) OverrideStatus(ctx context.Context, id int, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $1,
		    cancelled_at = CASE WHEN $1 = 'CANCELLED' AND cancelled_at IS NULL THEN NOW() ELSE cancelled_at END,
		    updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// AutoCompleteBatch completes at most limit CONFIRMED bookings whose session
// ended long enough ago, and reports how many it touched. SKIP LOCKED keeps
// the sweep from blocking concurrent booking writes.
func (r *repository) AutoCompleteBatch(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'COMPLETED', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM bookings
			WHERE status = 'CONFIRMED' AND scheduled_at <= $1
			ORDER BY scheduled_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
	`, cutoff, limit)
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}
