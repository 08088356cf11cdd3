package catalog

import "time"

type PricingType string

const (
	PricingOneTime      PricingType = "ONE_TIME"
	PricingSubscription PricingType = "SUBSCRIPTION"
)

type Trainer struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Bio       string    `db:"bio" json:"bio"`
	Specialty string    `db:"specialty" json:"specialty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SessionType struct {
	ID              int       `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// SessionTypeOption is a priced offering of a session type. Subscription
// options carry billing fields; one-time options leave them null.
type SessionTypeOption struct {
	ID                int         `db:"id" json:"id"`
	SessionTypeID     int         `db:"session_type_id" json:"session_type_id"`
	Name              string      `db:"name" json:"name"`
	Description       string      `db:"description" json:"description"`
	Price             float64     `db:"price" json:"price"`
	PricingType       PricingType `db:"pricing_type" json:"pricing_type"`
	BillingPeriodDays *int        `db:"billing_period_days" json:"billing_period_days,omitempty"`
	SessionsPerWeek   *int        `db:"sessions_per_week" json:"sessions_per_week,omitempty"`
	MaxParticipants   int         `db:"max_participants" json:"max_participants"`
	IsActive          bool        `db:"is_active" json:"is_active"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// OptionDetails joins the option with the duration of its session type,
// which bookings snapshot at creation time.
type OptionDetails struct {
	SessionTypeOption
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes"`
	SessionTypeName string `db:"session_type_name" json:"session_type_name"`
}

func (o *SessionTypeOption) IsSubscription() bool {
	return o.PricingType == PricingSubscription
}

type CreateTrainerRequest struct {
	UserID    int    `json:"user_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Bio       string `json:"bio"`
	Specialty string `json:"specialty"`
}

type CreateSessionTypeRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=15,max=480"`
}

type CreateOptionRequest struct {
	SessionTypeID     int     `json:"session_type_id" binding:"required"`
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	Price             float64 `json:"price" binding:"required,gt=0"`
	PricingType       string  `json:"pricing_type" binding:"required,oneof=ONE_TIME SUBSCRIPTION"`
	BillingPeriodDays *int    `json:"billing_period_days"`
	SessionsPerWeek   *int    `json:"sessions_per_week"`
	MaxParticipants   int     `json:"max_participants" binding:"required,min=1"`
}
