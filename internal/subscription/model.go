package subscription

import "time"

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusPaused    Status = "PAUSED"
	StatusExpired   Status = "EXPIRED"
)

type TransactionType string

const (
	TxGranted  TransactionType = "GRANTED"
	TxUsed     TransactionType = "USED"
	TxReturned TransactionType = "RETURNED"
	TxExpired  TransactionType = "EXPIRED"
)

// Subscription is a token bank for one player on one priced program.
// PeriodDays is snapshotted from the option at creation so later catalog
// edits never change an existing subscription's billing interval.
type Subscription struct {
	ID                 int       `db:"id" json:"id"`
	UserID             int       `db:"user_id" json:"user_id"`
	PlayerID           int       `db:"player_id" json:"player_id"`
	OptionID           int       `db:"option_id" json:"option_id"`
	Status             Status    `db:"status" json:"status"`
	TokensPerPeriod    int       `db:"tokens_per_period" json:"tokens_per_period"`
	TokensRemaining    int       `db:"tokens_remaining" json:"tokens_remaining"`
	AutoRenew          bool      `db:"auto_renew" json:"auto_renew"`
	PeriodDays         int       `db:"period_days" json:"period_days"`
	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   time.Time `db:"current_period_end" json:"current_period_end"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// TokenTransaction is one append-only ledger row. BalanceAfter snapshots
// tokens_remaining as of this adjustment.
type TokenTransaction struct {
	ID             int             `db:"id" json:"id"`
	SubscriptionID int             `db:"subscription_id" json:"subscription_id"`
	BookingID      *int            `db:"booking_id" json:"booking_id,omitempty"`
	Type           TransactionType `db:"type" json:"type"`
	Amount         int             `db:"amount" json:"amount"`
	BalanceAfter   int             `db:"balance_after" json:"balance_after"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type CreateSubscriptionRequest struct {
	PlayerID        int   `json:"player_id" binding:"required"`
	OptionID        int   `json:"option_id" binding:"required"`
	TokensPerPeriod int   `json:"tokens_per_period" binding:"required,min=1,max=31"`
	AutoRenew       *bool `json:"auto_renew"`
}
