package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrTrainerNotFound     = errors.New("trainer not found")
	ErrSessionTypeNotFound = errors.New("session type not found")
	ErrOptionNotFound      = errors.New("session type option not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTrainer(ctx context.Context, userID int, name, bio, specialty string) (*Trainer, error) {
	query := `
		INSERT INTO trainers (user_id, name, bio, specialty, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, user_id, name, bio, specialty, is_active, created_at
	`

	var trainer Trainer
	err := r.db.GetContext(ctx, &trainer, query, userID, name, bio, specialty)
	if err != nil {
		return nil, err
	}

	return &trainer, nil
}

func (r *repository) GetTrainerByID(ctx context.Context, id int) (*Trainer, error) {
	query := `
		SELECT id, user_id, name, bio, specialty, is_active, created_at
		FROM trainers
		WHERE id = $1
	`

	var trainer Trainer
	err := r.db.GetContext(ctx, &trainer, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &trainer, nil
}

func (r *repository) GetTrainerByUserID(ctx context.Context, userID int) (*Trainer, error) {
	query := `
		SELECT id, user_id, name, bio, specialty, is_active, created_at
		FROM trainers
		WHERE user_id = $1
	`

	var trainer Trainer
	err := r.db.GetContext(ctx, &trainer, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &trainer, nil
}

func (r *repository) ListTrainers(ctx context.Context) ([]Trainer, error) {
	query := `
		SELECT id, user_id, name, bio, specialty, is_active, created_at
		FROM trainers
		WHERE is_active = true
		ORDER BY name ASC
	`

	var trainers []Trainer
	err := r.db.SelectContext(ctx, &trainers, query)
	if err != nil {
		return nil, err
	}

	return trainers, nil
}

func (r *repository) CreateSessionType(ctx context.Context, name, description string, durationMinutes int) (*SessionType, error) {
	query := `
		INSERT INTO session_types (name, description, duration_minutes, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING id, name, description, duration_minutes, is_active, created_at, updated_at
	`

	var st SessionType
	err := r.db.GetContext(ctx, &st, query, name, description, durationMinutes)
	if err != nil {
		return nil, err
	}

	return &st, nil
}

func (r *repository) GetSessionTypeByID(ctx context.Context, id int) (*SessionType, error) {
	query := `
		SELECT id, name, description, duration_minutes, is_active, created_at, updated_at
		FROM session_types
		WHERE id = $1
	`

	var st SessionType
	err := r.db.GetContext(ctx, &st, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}

	return &st, nil
}

func (r *repository) ListSessionTypes(ctx context.Context) ([]SessionType, error) {
	query := `
		SELECT id, name, description, duration_minutes, is_active, created_at, updated_at
		FROM session_types
		WHERE is_active = true
		ORDER BY name ASC
	`

	var types []SessionType
	err := r.db.SelectContext(ctx, &types, query)
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (r *repository) CreateOption(ctx context.Context, opt *SessionTypeOption) (*SessionTypeOption, error) {
	query := `
		INSERT INTO session_type_options
			(session_type_id, name, description, price, pricing_type, billing_period_days, sessions_per_week, max_participants, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING id, session_type_id, name, description, price, pricing_type,
		          billing_period_days, sessions_per_week, max_participants, is_active, created_at, updated_at
	`

	var created SessionTypeOption
	err := r.db.GetContext(ctx, &created, query,
		opt.SessionTypeID, opt.Name, opt.Description, opt.Price, opt.PricingType,
		opt.BillingPeriodDays, opt.SessionsPerWeek, opt.MaxParticipants,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetOptionByID(ctx context.Context, id int) (*OptionDetails, error) {
	query := `
		SELECT
			o.id, o.session_type_id, o.name, o.description, o.price, o.pricing_type,
			o.billing_period_days, o.sessions_per_week, o.max_participants, o.is_active,
			o.created_at, o.updated_at,
			st.duration_minutes AS duration_minutes,
			st.name AS session_type_name
		FROM session_type_options o
		JOIN session_types st ON o.session_type_id = st.id
		WHERE o.id = $1
	`

	var opt OptionDetails
	err := r.db.GetContext(ctx, &opt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}

	return &opt, nil
}

func (r *repository) ListOptionsBySessionType(ctx context.Context, sessionTypeID int) ([]SessionTypeOption, error) {
	query := `
		SELECT id, session_type_id, name, description, price, pricing_type,
		       billing_period_days, sessions_per_week, max_participants, is_active, created_at, updated_at
		FROM session_type_options
		WHERE session_type_id = $1 AND is_active = true
		ORDER BY price ASC
	`

	var options []SessionTypeOption
	err := r.db.SelectContext(ctx, &options, query, sessionTypeID)
	if err != nil {
		return nil, err
	}

	return options, nil
}

func (r *repository) DeactivateOption(ctx context.Context, id int) error {
	query := `
		UPDATE session_type_options
		SET is_active = false, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrOptionNotFound
	}

	return nil
}
