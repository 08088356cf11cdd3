package availability

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrWindowNotFound = errors.New("availability window not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, trainerID, weekday int, startTime, endTime string) (*Window, error) {
	query := `
		INSERT INTO availability_windows (trainer_id, weekday, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, trainer_id, weekday, start_time, end_time, is_active, created_at
	`

	var window Window
	err := r.db.GetContext(ctx, &window, query, trainerID, weekday, startTime, endTime)
	if err != nil {
		return nil, err
	}

	return &window, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Window, error) {
	query := `
		SELECT id, trainer_id, weekday, start_time, end_time, is_active, created_at
		FROM availability_windows
		WHERE id = $1
	`

	var window Window
	err := r.db.GetContext(ctx, &window, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}

	return &window, nil
}

func (r *repository) ListByTrainer(ctx context.Context, trainerID int) ([]Window, error) {
	query := `
		SELECT id, trainer_id, weekday, start_time, end_time, is_active, created_at
		FROM availability_windows
		WHERE trainer_id = $1
		ORDER BY weekday ASC, start_time ASC
	`

	var windows []Window
	err := r.db.SelectContext(ctx, &windows, query, trainerID)
	if err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *repository) ListActiveForDay(ctx context.Context, trainerID, weekday int) ([]Window, error) {
	query := `
		SELECT id, trainer_id, weekday, start_time, end_time, is_active, created_at
		FROM availability_windows
		WHERE trainer_id = $1 AND weekday = $2 AND is_active = true
		ORDER BY start_time ASC
	`

	var windows []Window
	err := r.db.SelectContext(ctx, &windows, query, trainerID, weekday)
	if err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *repository) Update(ctx context.Context, w *Window) (*Window, error) {
	query := `
		UPDATE availability_windows
		SET weekday = $1, start_time = $2, end_time = $3, is_active = $4
		WHERE id = $5
		RETURNING id, trainer_id, weekday, start_time, end_time, is_active, created_at
	`

	var updated Window
	err := r.db.GetContext(ctx, &updated, query, w.Weekday, w.StartTime, w.EndTime, w.IsActive, w.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrWindowNotFound
	}

	return nil
}
