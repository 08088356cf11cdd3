package player

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrPlayerNotFound = errors.New("player not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, parentID int, name string, birthDate *time.Time, notes string) (*Player, error) {
	query := `
		INSERT INTO players (parent_id, name, birth_date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, parent_id, user_id, name, birth_date, notes, created_at
	`

	var player Player
	err := r.db.GetContext(ctx, &player, query, parentID, name, birthDate, notes)
	if err != nil {
		return nil, err
	}

	return &player, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Player, error) {
	query := `
		SELECT id, parent_id, user_id, name, birth_date, notes, created_at
		FROM players
		WHERE id = $1
	`

	var player Player
	err := r.db.GetContext(ctx, &player, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	return &player, nil
}

func (r *repository) ListByParent(ctx context.Context, parentID int) ([]Player, error) {
	query := `
		SELECT id, parent_id, user_id, name, birth_date, notes, created_at
		FROM players
		WHERE parent_id = $1
		ORDER BY name ASC
	`

	var players []Player
	err := r.db.SelectContext(ctx, &players, query, parentID)
	if err != nil {
		return nil, err
	}

	return players, nil
}

// BelongsToUser reports whether the player is owned by the user either as a
// parent-managed child or as the user's own player profile.
func (r *repository) BelongsToUser(ctx context.Context, playerID, userID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM players
			WHERE id = $1 AND (parent_id = $2 OR user_id = $2)
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, playerID, userID)
	if err != nil {
		return false, err
	}

	return exists, nil
}
