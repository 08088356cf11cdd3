package payment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"velobook/internal/subscription"
)

var paymentCols = []string{
	"id", "user_id", "booking_id", "gateway_payment_id", "status", "method", "amount",
	"currency", "paid_at", "refund_reason", "refunded_at", "created_at", "updated_at",
}

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

func paymentRow(id int, status Status, method Method) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(paymentCols).
		AddRow(id, 1, 7, nil, status, method, 85.0, "USD", nil, nil, nil, now, now)
}

func TestCreateClaimsBooking(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(1, 7, nil, StatusPending, MethodCardOnline, 85.0, "USD", nil).
		WillReturnRows(paymentRow(3, StatusPending, MethodCardOnline))

	p, err := repo.Create(context.Background(), &Payment{
		UserID:    1,
		BookingID: 7,
		Status:    StatusPending,
		Method:    MethodCardOnline,
		Amount:    85.0,
		Currency:  Currency,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, p.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSecondAttemptLosesRace(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(1, 7, nil, StatusPending, MethodCardOnline, 85.0, "USD", nil).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &Payment{
		UserID:    1,
		BookingID: 7,
		Status:    StatusPending,
		Method:    MethodCardOnline,
		Amount:    85.0,
		Currency:  Currency,
	})
	require.ErrorIs(t, err, ErrDuplicatePayment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleCardPayment(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	gwID := "sq-abc"
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE payments SET status = 'COMPLETED'").
		WithArgs(MethodCardOnline, &gwID, 3).
		WillReturnRows(paymentRow(3, StatusCompleted, MethodCardOnline))
	mock.ExpectExec("UPDATE bookings SET status = 'CONFIRMED'").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := repo.Settle(context.Background(), 3, MethodCardOnline, &gwID, 7, nil)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, p.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleTokenPayment(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	subID := 8
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE payments SET status = 'COMPLETED'").
		WithArgs(MethodToken, nil, 3).
		WillReturnRows(paymentRow(3, StatusCompleted, MethodToken))
	mock.ExpectQuery("UPDATE subscriptions SET tokens_remaining = tokens_remaining - 1").
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"tokens_remaining"}).AddRow(1))
	mock.ExpectExec("INSERT INTO token_transactions").
		WithArgs(8, 7, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE bookings SET subscription_id").
		WithArgs(8, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status = 'CONFIRMED'").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := repo.Settle(context.Background(), 3, MethodToken, nil, 7, &subID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, p.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleReplayRollsBack(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE payments SET status = 'COMPLETED'").
		WithArgs(MethodCash, nil, 3).
		WillReturnRows(sqlmock.NewRows(paymentCols))
	mock.ExpectRollback()

	_, err := repo.Settle(context.Background(), 3, MethodCash, nil, 7, nil)
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleExhaustedTokensRollsBack(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	subID := 8
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE payments SET status = 'COMPLETED'").
		WithArgs(MethodToken, nil, 3).
		WillReturnRows(paymentRow(3, StatusCompleted, MethodToken))
	mock.ExpectQuery("UPDATE subscriptions SET tokens_remaining = tokens_remaining - 1").
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"tokens_remaining"}))
	mock.ExpectRollback()

	// The payment update rides in the same transaction, so the exhausted
	// balance undoes it too and the claim row stays PENDING.
	_, err := repo.Settle(context.Background(), 3, MethodToken, nil, 7, &subID)
	require.ErrorIs(t, err, subscription.ErrNoActiveSubscription)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleBookingNotUnpaidRollsBack(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE payments SET status = 'COMPLETED'").
		WithArgs(MethodCash, nil, 3).
		WillReturnRows(paymentRow(3, StatusCompleted, MethodCash))
	mock.ExpectExec("UPDATE bookings SET status = 'CONFIRMED'").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Settle(context.Background(), 3, MethodCash, nil, 7, nil)
	require.ErrorIs(t, err, ErrInvalidState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRefundedRequiresCompleted(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("UPDATE payments SET status = 'REFUNDED'").
		WithArgs("duplicate charge", 3).
		WillReturnRows(sqlmock.NewRows(paymentCols))

	_, err := repo.MarkRefunded(context.Background(), 3, "duplicate charge")
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByBookingNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT .+ FROM payments WHERE booking_id = \\$1").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(paymentCols))

	_, err := repo.GetByBooking(context.Background(), 7)
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOnlyRemovesPending(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec("DELETE FROM payments WHERE id = \\$1 AND status = 'PENDING'").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}
