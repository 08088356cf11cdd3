package player

import "time"

// Player is the person actually attending sessions. A parent account may own
// several players; an independent rider owns exactly one linked to itself.
type Player struct {
	ID        int        `db:"id" json:"id"`
	ParentID  *int       `db:"parent_id" json:"parent_id,omitempty"`
	UserID    *int       `db:"user_id" json:"user_id,omitempty"`
	Name      string     `db:"name" json:"name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Notes     string     `db:"notes" json:"notes"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type CreatePlayerRequest struct {
	Name      string `json:"name" binding:"required"`
	BirthDate string `json:"birth_date"`
	Notes     string `json:"notes"`
}
