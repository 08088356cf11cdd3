package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"velobook/internal/subscription"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrDuplicatePayment = errors.New("payment already exists for this booking")
)

const pqUniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, user_id, booking_id, gateway_payment_id, status, method, amount,
	currency, paid_at, refund_reason, refunded_at, created_at, updated_at`

// Create inserts the payment row that claims the booking. bookings are
// guarded by a UNIQUE constraint on booking_id, so of two racing payment
// attempts exactly one insert succeeds and the other sees ErrDuplicatePayment.
func (r *repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	created := &Payment{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (user_id, booking_id, gateway_payment_id, status, method, amount, currency, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+paymentColumns+`
	`, p.UserID, p.BookingID, p.GatewayPaymentID, p.Status, p.Method, p.Amount, p.Currency, p.PaidAt).StructScan(created)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, ErrDuplicatePayment
		}
		return nil, err
	}

	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Payment, error) {
	p := &Payment{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *repository) GetByBooking(ctx context.Context, bookingID int) (*Payment, error) {
	p := &Payment{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE booking_id = $1
	`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return payments, err
}

// Settle finalizes a PENDING payment and confirms its booking in one
// transaction. A token settlement additionally burns the token, writes the
// ledger entry and links the subscription inside that same transaction, so
// no step of the settlement can land without the others: any failure rolls
// the whole thing back and the claim row stays PENDING.
func (r *repository) Settle(ctx context.Context, id int, method Method, gatewayPaymentID *string, bookingID int, subscriptionID *int) (*Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p := &Payment{}
	err = tx.QueryRowxContext(ctx, `
		UPDATE payments
		SET status = 'COMPLETED', method = $1,
		    gateway_payment_id = COALESCE($2, gateway_payment_id),
		    paid_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND status = 'PENDING'
		RETURNING `+paymentColumns+`
	`, method, gatewayPaymentID, id).StructScan(p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if subscriptionID != nil {
		var remaining int
		err = tx.QueryRowxContext(ctx, `
			UPDATE subscriptions
			SET tokens_remaining = tokens_remaining - 1, updated_at = NOW()
			WHERE id = $1 AND status = 'ACTIVE' AND tokens_remaining > 0
			RETURNING tokens_remaining
		`, *subscriptionID).Scan(&remaining)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, subscription.ErrNoActiveSubscription
			}
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO token_transactions (subscription_id, booking_id, type, amount, balance_after)
			VALUES ($1, $2, 'USED', -1, $3)
		`, *subscriptionID, bookingID, remaining)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET subscription_id = $1, updated_at = NOW()
			WHERE id = $2
		`, *subscriptionID, bookingID)
		if err != nil {
			return nil, err
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'CONFIRMED', updated_at = NOW()
		WHERE id = $1 AND status = 'UNPAID'
	`, bookingID)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: booking is not awaiting payment", ErrInvalidState)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *repository) MarkRefunded(ctx context.Context, id int, reason string) (*Payment, error) {
	p := &Payment{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE payments
		SET status = 'REFUNDED', refund_reason = $1, refunded_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = 'COMPLETED'
		RETURNING `+paymentColumns+`
	`, reason, id).StructScan(p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return p, nil
}

// Delete discards an abandoned attempt so a later retry can claim the
// booking again. Only PENDING rows are ever deleted.
func (r *repository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1 AND status = 'PENDING'`, id)
	return err
}
