package payment

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusRefunded  Status = "REFUNDED"
)

type Method string

const (
	MethodCardOnline   Method = "CARD_ONLINE"
	MethodCardInPerson Method = "CARD_IN_PERSON"
	MethodCash         Method = "CASH"
	MethodToken        Method = "TOKEN"
)

const Currency = "USD"

// Failure codes surfaced to clients when the gateway declines a charge.
const (
	CodeCardDeclined      = "CARD_DECLINED"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeCardExpired       = "CARD_EXPIRED"
	CodeInvalidCard       = "INVALID_CARD"
	CodePaymentError      = "PAYMENT_ERROR"
	CodeRefundFailed      = "REFUND_FAILED"
)

// Payment settles exactly one booking. GatewayPaymentID stays null until a
// gateway call succeeds; in-person and token payments never get one.
type Payment struct {
	ID               int        `db:"id" json:"id"`
	UserID           int        `db:"user_id" json:"user_id"`
	BookingID        int        `db:"booking_id" json:"booking_id"`
	GatewayPaymentID *string    `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	Status           Status     `db:"status" json:"status"`
	Method           Method     `db:"method" json:"method"`
	Amount           float64    `db:"amount" json:"amount"`
	Currency         string     `db:"currency" json:"currency"`
	PaidAt           *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	RefundReason     *string    `db:"refund_reason" json:"refund_reason,omitempty"`
	RefundedAt       *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

type ProcessPaymentRequest struct {
	BookingID   int    `json:"booking_id" binding:"required"`
	PayInPerson bool   `json:"pay_in_person"`
	UseToken    bool   `json:"use_token"`
	SourceToken string `json:"source_token"`
}

type ReceiveInPersonRequest struct {
	Method Method `json:"method" binding:"required"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
