package booking

import "time"

type Status string

const (
	StatusUnpaid    Status = "UNPAID"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// ValidStatus reports whether s is one of the known booking states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusUnpaid, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Booking reserves [ScheduledAt, ScheduledAt+DurationMinutes) with a trainer.
// Duration and price are snapshotted from the session option at creation and
// never change afterwards. SubscriptionID is set only when the booking was
// paid with a token.
type Booking struct {
	ID                 int        `db:"id" json:"id"`
	UserID             int        `db:"user_id" json:"user_id"`
	PlayerID           *int       `db:"player_id" json:"player_id,omitempty"`
	OptionID           int        `db:"option_id" json:"option_id"`
	TrainerID          int        `db:"trainer_id" json:"trainer_id"`
	SubscriptionID     *int       `db:"subscription_id" json:"subscription_id,omitempty"`
	Status             Status     `db:"status" json:"status"`
	ScheduledAt        time.Time  `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes    int        `db:"duration_minutes" json:"duration_minutes"`
	PricePaid          float64    `db:"price_paid" json:"price_paid"`
	PayInPerson        bool       `db:"pay_in_person" json:"pay_in_person"`
	PaymentDeadline    *time.Time `db:"payment_deadline" json:"payment_deadline,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	Notes              string     `db:"notes" json:"notes"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the reservation interval.
func (b *Booking) End() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsActive reports whether the booking still occupies its slot.
func (b *Booking) IsActive() bool {
	return b.Status == StatusUnpaid || b.Status == StatusConfirmed
}

// BookingWithDetails joins display names for list endpoints.
type BookingWithDetails struct {
	Booking
	SessionTypeName string  `db:"session_type_name" json:"session_type_name"`
	TrainerName     string  `db:"trainer_name" json:"trainer_name"`
	PlayerName      *string `db:"player_name" json:"player_name,omitempty"`
}

type CreateBookingRequest struct {
	PlayerID    *int      `json:"player_id"`
	OptionID    int       `json:"option_id" binding:"required"`
	TrainerID   int       `json:"trainer_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       string    `json:"notes" binding:"max=500"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type OverrideStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}
