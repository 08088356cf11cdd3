package catalog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func TestCreateAndGetTrainer(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO trainers (user_id, name, bio, specialty, is_active) VALUES ($1, $2, $3, $4, true) RETURNING id, user_id, name, bio, specialty, is_active, created_at")).
		WithArgs(3, "Eva", "Track sprinter", "sprint").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "bio", "specialty", "is_active", "created_at"}).
			AddRow(1, 3, "Eva", "Track sprinter", "sprint", true, now))

	trainer, err := repo.CreateTrainer(context.Background(), 3, "Eva", "Track sprinter", "sprint")
	require.NoError(t, err)
	require.Equal(t, 1, trainer.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, bio, specialty, is_active, created_at FROM trainers WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "bio", "specialty", "is_active", "created_at"}).
			AddRow(1, 3, "Eva", "Track sprinter", "sprint", true, now))

	got, err := repo.GetTrainerByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Eva", got.Name)
}

func TestGetTrainerNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, bio, specialty, is_active, created_at FROM trainers WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetTrainerByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrTrainerNotFound)
}

func TestGetOptionByIDJoinsDuration(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	cols := []string{
		"id", "session_type_id", "name", "description", "price", "pricing_type",
		"billing_period_days", "sessions_per_week", "max_participants", "is_active",
		"created_at", "updated_at", "duration_minutes", "session_type_name",
	}

	mock.ExpectQuery("SELECT .+ FROM session_type_options o JOIN session_types st").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, 2, "Drop-in", "", 45.00, "ONE_TIME", nil, nil, 1, true, now, now, 60, "1:1 Coaching"))

	opt, err := repo.GetOptionByID(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 60, opt.DurationMinutes)
	require.Equal(t, PricingOneTime, opt.PricingType)
	require.InDelta(t, 45.00, opt.Price, 0.001)
}

func TestDeactivateOption(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE session_type_options SET is_active = false, updated_at = NOW() WHERE id = $1")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeactivateOption(context.Background(), 4))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE session_type_options SET is_active = false, updated_at = NOW() WHERE id = $1")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeactivateOption(context.Background(), 5)
	require.ErrorIs(t, err, ErrOptionNotFound)
}
