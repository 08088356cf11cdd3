package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNoActiveSubscription = errors.New("no active subscription with available tokens")
	ErrDuplicateActive      = errors.New("player already has an active subscription for this program")
)

const pqUniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const subscriptionColumns = `id, user_id, player_id, option_id, status, tokens_per_period, tokens_remaining,
	auto_renew, period_days, current_period_start, current_period_end, created_at, updated_at`

func (r *repository) Create(ctx context.Context, userID, playerID, optionID, tokensPerPeriod, periodDays int, autoRenew bool) (*Subscription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	periodEnd := now.AddDate(0, 0, periodDays)

	sub := &Subscription{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO subscriptions
			(user_id, player_id, option_id, status, tokens_per_period, tokens_remaining, auto_renew, period_days, current_period_start, current_period_end)
		VALUES ($1, $2, $3, 'ACTIVE', $4, $4, $5, $6, $7, $8)
		RETURNING `+subscriptionColumns,
		userID, playerID, optionID, tokensPerPeriod, autoRenew, periodDays, now, periodEnd,
	).StructScan(sub)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, ErrDuplicateActive
		}
		return nil, err
	}

	// Opening grant so the ledger explains the starting balance.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO token_transactions (subscription_id, type, amount, balance_after)
		VALUES ($1, 'GRANTED', $2, $2)
	`, sub.ID, tokensPerPeriod)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return sub, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	return sub, nil
}

func (r *repository) GetActiveForPlayerAndOption(ctx context.Context, playerID, optionID int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE player_id = $1 AND option_id = $2 AND status = 'ACTIVE'
	`, playerID, optionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	return sub, nil
}

func (r *repository) GetActiveWithTokensForUser(ctx context.Context, userID int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status = 'ACTIVE' AND tokens_remaining > 0
		ORDER BY current_period_end ASC
		LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}

	return sub, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return subs, err
}

func (r *repository) ListActiveByUser(ctx context.Context, userID int) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status = 'ACTIVE'
		ORDER BY created_at DESC
	`, userID)
	return subs, err
}

func (r *repository) ListByPlayer(ctx context.Context, playerID int) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE player_id = $1
		ORDER BY created_at DESC
	`, playerID)
	return subs, err
}

// ReturnToken restores exactly the token a cancelled booking took. The
// per-period cap is deliberately not enforced here: a return puts back what
// was deducted, even if a rollover happened in between.
func (r *repository) ReturnToken(ctx context.Context, subscriptionID, bookingID int) (*TokenTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var sub Subscription
	err = tx.QueryRowxContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1
		FOR UPDATE
	`, subscriptionID).StructScan(&sub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	newBalance := sub.TokensRemaining + 1

	_, err = tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET tokens_remaining = $1, updated_at = NOW()
		WHERE id = $2
	`, newBalance, subscriptionID)
	if err != nil {
		return nil, err
	}

	ledger := &TokenTransaction{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO token_transactions (subscription_id, booking_id, type, amount, balance_after)
		VALUES ($1, $2, 'RETURNED', 1, $3)
		RETURNING id, subscription_id, booking_id, type, amount, balance_after, created_at
	`, subscriptionID, bookingID, newBalance).StructScan(ledger)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return ledger, nil
}

// RolloverDue processes at most limit due subscriptions in one short
// transaction. SKIP LOCKED keeps concurrent sweeps and token operations from
// blocking each other; callers loop until both counts come back zero.
func (r *repository) RolloverDue(ctx context.Context, now time.Time, limit int) (renewed, expired int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var due []Subscription
	err = tx.SelectContext(ctx, &due, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE status = 'ACTIVE' AND current_period_end <= $1
		ORDER BY current_period_end ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, now, limit)
	if err != nil {
		return 0, 0, err
	}

	for _, sub := range due {
		if sub.AutoRenew {
			newStart := sub.CurrentPeriodEnd
			newEnd := newStart.AddDate(0, 0, sub.PeriodDays)
			// Catch up if the sweep was down for more than a full period.
			for !newEnd.After(now) {
				newStart = newEnd
				newEnd = newStart.AddDate(0, 0, sub.PeriodDays)
			}

			_, err = tx.ExecContext(ctx, `
				UPDATE subscriptions
				SET tokens_remaining = tokens_per_period,
				    current_period_start = $1,
				    current_period_end = $2,
				    updated_at = NOW()
				WHERE id = $3
			`, newStart, newEnd, sub.ID)
			if err != nil {
				return 0, 0, err
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO token_transactions (subscription_id, type, amount, balance_after)
				VALUES ($1, 'GRANTED', $2, $2)
			`, sub.ID, sub.TokensPerPeriod)
			if err != nil {
				return 0, 0, err
			}

			renewed++
			continue
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE subscriptions
			SET status = 'EXPIRED', tokens_remaining = 0, updated_at = NOW()
			WHERE id = $1
		`, sub.ID)
		if err != nil {
			return 0, 0, err
		}

		if sub.TokensRemaining > 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO token_transactions (subscription_id, type, amount, balance_after)
				VALUES ($1, 'EXPIRED', $2, 0)
			`, sub.ID, -sub.TokensRemaining)
			if err != nil {
				return 0, 0, err
			}
		}

		expired++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}

	return renewed, expired, nil
}

func (r *repository) ListTransactions(ctx context.Context, subscriptionID, limit, offset int) ([]TokenTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []TokenTransaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, subscription_id, booking_id, type, amount, balance_after, created_at
		FROM token_transactions
		WHERE subscription_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, subscriptionID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
