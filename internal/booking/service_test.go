package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"velobook/internal/auth"
	"velobook/internal/availability"
	"velobook/internal/catalog"
	"velobook/internal/logger"
	"velobook/internal/player"
	"velobook/internal/subscription"
	"velobook/internal/user"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

type MockRepo struct{ mock.Mock }

func (m *MockRepo) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepo) GetByID(ctx context.Context, id int) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepo) ListByUser(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockRepo) ListByTrainer(ctx context.Context, trainerID int) ([]BookingWithDetails, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockRepo) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockRepo) SetPayInPerson(ctx context.Context, bookingID int, deadline time.Time) error {
	return m.Called(ctx, bookingID, deadline).Error(0)
}

func (m *MockRepo) Cancel(ctx context.Context, id int, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *MockRepo) ForceCancel(ctx context.Context, id int, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *MockRepo) MarkNoShow(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepo) OverrideStatus(ctx context.Context, id int, status Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRepo) AutoCompleteBatch(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Int(0), args.Error(1)
}

type MockAvailability struct{ mock.Mock }

func (m *MockAvailability) AddWindow(ctx context.Context, trainerID, weekday int, startTime, endTime string) (*availability.Window, error) {
	args := m.Called(ctx, trainerID, weekday, startTime, endTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Window), args.Error(1)
}

func (m *MockAvailability) ListWindows(ctx context.Context, trainerID int) ([]availability.Window, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]availability.Window), args.Error(1)
}

func (m *MockAvailability) UpdateWindow(ctx context.Context, windowID, trainerID int, req *availability.UpdateWindowRequest) (*availability.Window, error) {
	args := m.Called(ctx, windowID, trainerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Window), args.Error(1)
}

func (m *MockAvailability) DeleteWindow(ctx context.Context, windowID, trainerID int) error {
	return m.Called(ctx, windowID, trainerID).Error(0)
}

func (m *MockAvailability) IsWithinAvailability(ctx context.Context, trainerID, weekday, startMin, endMin int) (bool, error) {
	args := m.Called(ctx, trainerID, weekday, startMin, endMin)
	return args.Bool(0), args.Error(1)
}

type MockPlayerRepo struct{ mock.Mock }

func (m *MockPlayerRepo) Create(ctx context.Context, parentID int, name string, birthDate *time.Time, notes string) (*player.Player, error) {
	args := m.Called(ctx, parentID, name, birthDate, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*player.Player), args.Error(1)
}

func (m *MockPlayerRepo) GetByID(ctx context.Context, id int) (*player.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*player.Player), args.Error(1)
}

func (m *MockPlayerRepo) ListByParent(ctx context.Context, parentID int) ([]player.Player, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]player.Player), args.Error(1)
}

func (m *MockPlayerRepo) BelongsToUser(ctx context.Context, playerID, userID int) (bool, error) {
	args := m.Called(ctx, playerID, userID)
	return args.Bool(0), args.Error(1)
}

type MockCatalogRepo struct{ mock.Mock }

func (m *MockCatalogRepo) CreateTrainer(ctx context.Context, userID int, name, bio, specialty string) (*catalog.Trainer, error) {
	args := m.Called(ctx, userID, name, bio, specialty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Trainer), args.Error(1)
}

func (m *MockCatalogRepo) GetTrainerByID(ctx context.Context, id int) (*catalog.Trainer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Trainer), args.Error(1)
}

func (m *MockCatalogRepo) GetTrainerByUserID(ctx context.Context, userID int) (*catalog.Trainer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Trainer), args.Error(1)
}

func (m *MockCatalogRepo) ListTrainers(ctx context.Context) ([]catalog.Trainer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Trainer), args.Error(1)
}

func (m *MockCatalogRepo) CreateSessionType(ctx context.Context, name, description string, durationMinutes int) (*catalog.SessionType, error) {
	args := m.Called(ctx, name, description, durationMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SessionType), args.Error(1)
}

func (m *MockCatalogRepo) GetSessionTypeByID(ctx context.Context, id int) (*catalog.SessionType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SessionType), args.Error(1)
}

func (m *MockCatalogRepo) ListSessionTypes(ctx context.Context) ([]catalog.SessionType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.SessionType), args.Error(1)
}

func (m *MockCatalogRepo) CreateOption(ctx context.Context, opt *catalog.SessionTypeOption) (*catalog.SessionTypeOption, error) {
	args := m.Called(ctx, opt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SessionTypeOption), args.Error(1)
}

func (m *MockCatalogRepo) GetOptionByID(ctx context.Context, id int) (*catalog.OptionDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.OptionDetails), args.Error(1)
}

func (m *MockCatalogRepo) ListOptionsBySessionType(ctx context.Context, sessionTypeID int) ([]catalog.SessionTypeOption, error) {
	args := m.Called(ctx, sessionTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.SessionTypeOption), args.Error(1)
}

func (m *MockCatalogRepo) DeactivateOption(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type MockSubRepo struct{ mock.Mock }

func (m *MockSubRepo) Create(ctx context.Context, userID, playerID, optionID, tokensPerPeriod, periodDays int, autoRenew bool) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID, playerID, optionID, tokensPerPeriod, periodDays, autoRenew)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubRepo) GetByID(ctx context.Context, id int) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubRepo) GetActiveForPlayerAndOption(ctx context.Context, playerID, optionID int) (*subscription.Subscription, error) {
	args := m.Called(ctx, playerID, optionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubRepo) GetActiveWithTokensForUser(ctx context.Context, userID int) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubRepo) ListByUser(ctx context.Context, userID int) ([]subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

func (m *MockSubRepo) ListActiveByUser(ctx context.Context, userID int) ([]subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

func (m *MockSubRepo) ListByPlayer(ctx context.Context, playerID int) ([]subscription.Subscription, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

func (m *MockSubRepo) ReturnToken(ctx context.Context, subscriptionID, bookingID int) (*subscription.TokenTransaction, error) {
	args := m.Called(ctx, subscriptionID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.TokenTransaction), args.Error(1)
}

func (m *MockSubRepo) RolloverDue(ctx context.Context, now time.Time, limit int) (int, int, error) {
	args := m.Called(ctx, now, limit)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockSubRepo) ListTransactions(ctx context.Context, subscriptionID, limit, offset int) ([]subscription.TokenTransaction, error) {
	args := m.Called(ctx, subscriptionID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.TokenTransaction), args.Error(1)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash, role string) (*user.User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type fixture struct {
	repo        *MockRepo
	playerRepo  *MockPlayerRepo
	catalogRepo *MockCatalogRepo
	availSvc    *MockAvailability
	subRepo     *MockSubRepo
	userRepo    *MockUserRepo
	svc         Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:        new(MockRepo),
		playerRepo:  new(MockPlayerRepo),
		catalogRepo: new(MockCatalogRepo),
		availSvc:    new(MockAvailability),
		subRepo:     new(MockSubRepo),
		userRepo:    new(MockUserRepo),
	}
	f.svc = NewService(f.repo, f.playerRepo, f.catalogRepo, f.availSvc, f.subRepo, f.userRepo, nil)
	return f
}

func sessionOption() *catalog.OptionDetails {
	return &catalog.OptionDetails{
		SessionTypeOption: catalog.SessionTypeOption{ID: 3, Price: 85.00, PricingType: catalog.PricingOneTime},
		DurationMinutes:   60,
		SessionTypeName:   "Private Lesson",
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture()

	scheduledAt := time.Now().Add(3 * time.Hour)

	f.catalogRepo.On("GetOptionByID", mock.Anything, 3).Return(sessionOption(), nil)
	f.catalogRepo.On("GetTrainerByID", mock.Anything, 5).Return(&catalog.Trainer{ID: 5, IsActive: true}, nil)
	f.availSvc.On("IsWithinAvailability", mock.Anything, 5, int(scheduledAt.Weekday()),
		availability.MinuteOfDay(scheduledAt), availability.MinuteOfDay(scheduledAt)+60).Return(true, nil)
	f.repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.UserID == 1 && b.TrainerID == 5 && b.DurationMinutes == 60 && b.PricePaid == 85.00
	})).Return(&Booking{ID: 1, UserID: 1, TrainerID: 5, Status: StatusUnpaid}, nil)

	booking, err := f.svc.Create(context.Background(), 1, &CreateBookingRequest{
		OptionID:    3,
		TrainerID:   5,
		ScheduledAt: scheduledAt,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, booking.Status)
}

func TestCreateBookingTooSoon(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 1, &CreateBookingRequest{
		OptionID:    3,
		TrainerID:   5,
		ScheduledAt: time.Now().Add(1 * time.Hour),
	})
	require.ErrorIs(t, err, ErrInvalidBookingTime)
	f.repo.AssertNotCalled(t, "CreateBooking")
}

func TestCreateBookingTooFarAhead(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 1, &CreateBookingRequest{
		OptionID:    3,
		TrainerID:   5,
		ScheduledAt: time.Now().Add(91 * 24 * time.Hour),
	})
	require.ErrorIs(t, err, ErrInvalidBookingTime)
	f.repo.AssertNotCalled(t, "CreateBooking")
}

func TestCreateBookingOutsideAvailability(t *testing.T) {
	f := newFixture()

	scheduledAt := time.Now().Add(3 * time.Hour)

	f.catalogRepo.On("GetOptionByID", mock.Anything, 3).Return(sessionOption(), nil)
	f.catalogRepo.On("GetTrainerByID", mock.Anything, 5).Return(&catalog.Trainer{ID: 5}, nil)
	f.availSvc.On("IsWithinAvailability", mock.Anything, 5, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	_, err := f.svc.Create(context.Background(), 1, &CreateBookingRequest{
		OptionID:    3,
		TrainerID:   5,
		ScheduledAt: scheduledAt,
	})
	require.ErrorIs(t, err, ErrInvalidBookingTime)
	f.repo.AssertNotCalled(t, "CreateBooking")
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture()

	scheduledAt := time.Now().Add(3 * time.Hour)

	f.catalogRepo.On("GetOptionByID", mock.Anything, 3).Return(sessionOption(), nil)
	f.catalogRepo.On("GetTrainerByID", mock.Anything, 5).Return(&catalog.Trainer{ID: 5}, nil)
	f.availSvc.On("IsWithinAvailability", mock.Anything, 5, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.repo.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, ErrBookingConflict)

	_, err := f.svc.Create(context.Background(), 1, &CreateBookingRequest{
		OptionID:    3,
		TrainerID:   5,
		ScheduledAt: scheduledAt,
	})
	require.ErrorIs(t, err, ErrBookingConflict)
}

func TestCreateBookingUnownedPlayer(t *testing.T) {
	f := newFixture()

	playerID := 7
	f.playerRepo.On("BelongsToUser", mock.Anything, 7, 1).Return(false, nil)

	_, err := f.svc.Create(context.Background(), 1, &CreateBookingRequest{
		PlayerID:    &playerID,
		OptionID:    3,
		TrainerID:   5,
		ScheduledAt: time.Now().Add(3 * time.Hour),
	})
	require.ErrorIs(t, err, ErrPlayerNotOwned)
}

func TestCancelConfirmedInsideWindow(t *testing.T) {
	f := newFixture()

	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:          1,
		UserID:      1,
		Status:      StatusConfirmed,
		ScheduledAt: time.Now().Add(23 * time.Hour),
	}, nil)

	err := f.svc.Cancel(context.Background(), 1, auth.RoleMember, 1, "changed my mind")
	require.ErrorIs(t, err, ErrInvalidBookingTime)
	f.repo.AssertNotCalled(t, "Cancel")
}

func TestCancelConfirmedOutsideWindow(t *testing.T) {
	f := newFixture()

	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:          1,
		UserID:      1,
		Status:      StatusConfirmed,
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}, nil)
	f.repo.On("Cancel", mock.Anything, 1, "changed my mind").Return(nil)
	f.userRepo.On("FindByID", mock.Anything, 1).Return(nil, user.ErrUserNotFound)

	err := f.svc.Cancel(context.Background(), 1, auth.RoleMember, 1, "changed my mind")
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestCancelUnpaidAnytime(t *testing.T) {
	f := newFixture()

	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:          1,
		UserID:      1,
		Status:      StatusUnpaid,
		ScheduledAt: time.Now().Add(2 * time.Hour),
	}, nil)
	f.repo.On("Cancel", mock.Anything, 1, "").Return(nil)
	f.userRepo.On("FindByID", mock.Anything, 1).Return(nil, user.ErrUserNotFound)

	err := f.svc.Cancel(context.Background(), 1, auth.RoleMember, 1, "")
	require.NoError(t, err)
}

func TestCancelReturnsToken(t *testing.T) {
	f := newFixture()

	subID := 4
	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:             1,
		UserID:         1,
		SubscriptionID: &subID,
		Status:         StatusConfirmed,
		ScheduledAt:    time.Now().Add(48 * time.Hour),
	}, nil)
	f.repo.On("Cancel", mock.Anything, 1, "").Return(nil)
	f.subRepo.On("ReturnToken", mock.Anything, 4, 1).
		Return(&subscription.TokenTransaction{ID: 2, Type: subscription.TxReturned, Amount: 1, BalanceAfter: 1}, nil)
	f.userRepo.On("FindByID", mock.Anything, 1).Return(nil, user.ErrUserNotFound)

	err := f.svc.Cancel(context.Background(), 1, auth.RoleMember, 1, "")
	require.NoError(t, err)
	f.subRepo.AssertExpectations(t)
}

func TestCancelForeignBooking(t *testing.T) {
	f := newFixture()

	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{ID: 1, UserID: 2, Status: StatusUnpaid}, nil)

	err := f.svc.Cancel(context.Background(), 1, auth.RoleMember, 1, "")
	require.ErrorIs(t, err, ErrNotBookingOwner)
}

func TestMarkNoShowBeforeStart(t *testing.T) {
	f := newFixture()

	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:          1,
		TrainerID:   5,
		Status:      StatusConfirmed,
		ScheduledAt: time.Now().Add(1 * time.Hour),
	}, nil)
	f.catalogRepo.On("GetTrainerByUserID", mock.Anything, 9).Return(&catalog.Trainer{ID: 5, UserID: 9}, nil)

	err := f.svc.MarkNoShow(context.Background(), 9, 1)
	require.ErrorIs(t, err, ErrInvalidBookingTime)
	f.repo.AssertNotCalled(t, "MarkNoShow")
}

func TestMarkNoShowAfterStart(t *testing.T) {
	f := newFixture()

	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:          1,
		TrainerID:   5,
		Status:      StatusConfirmed,
		ScheduledAt: time.Now().Add(-1 * time.Hour),
	}, nil)
	f.catalogRepo.On("GetTrainerByUserID", mock.Anything, 9).Return(&catalog.Trainer{ID: 5, UserID: 9}, nil)
	f.repo.On("MarkNoShow", mock.Anything, 1).Return(nil)

	err := f.svc.MarkNoShow(context.Background(), 9, 1)
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestMarkNoShowWrongTrainer(t *testing.T) {
	f := newFixture()

	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:          1,
		TrainerID:   5,
		Status:      StatusConfirmed,
		ScheduledAt: time.Now().Add(-1 * time.Hour),
	}, nil)
	f.catalogRepo.On("GetTrainerByUserID", mock.Anything, 9).Return(&catalog.Trainer{ID: 6, UserID: 9}, nil)

	err := f.svc.MarkNoShow(context.Background(), 9, 1)
	require.ErrorIs(t, err, ErrNotTrainerBooking)
}

func TestCancelForRefundIgnoresWindow(t *testing.T) {
	f := newFixture()

	subID := 4
	f.repo.On("GetByID", mock.Anything, 1).Return(&Booking{
		ID:             1,
		UserID:         1,
		SubscriptionID: &subID,
		Status:         StatusCompleted,
		ScheduledAt:    time.Now().Add(-48 * time.Hour),
	}, nil)
	f.repo.On("ForceCancel", mock.Anything, 1, "Payment refunded: card dispute").Return(nil)
	f.subRepo.On("ReturnToken", mock.Anything, 4, 1).
		Return(&subscription.TokenTransaction{ID: 3, Type: subscription.TxReturned}, nil)
	f.userRepo.On("FindByID", mock.Anything, 1).Return(nil, user.ErrUserNotFound)

	err := f.svc.CancelForRefund(context.Background(), 1, "Payment refunded: card dispute")
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestAdminOverrideRejectsUnknownStatus(t *testing.T) {
	f := newFixture()

	err := f.svc.AdminOverrideStatus(context.Background(), 1, Status("LOST"))
	require.ErrorIs(t, err, ErrUnknownStatus)
	f.repo.AssertNotCalled(t, "OverrideStatus")
}

func TestAutoCompleteSweepDrainsBatches(t *testing.T) {
	f := newFixture()

	now := time.Now()
	cutoff := now.Add(-AutoCompleteAfter)

	f.repo.On("AutoCompleteBatch", mock.Anything, cutoff, 2).Return(2, nil).Once()
	f.repo.On("AutoCompleteBatch", mock.Anything, cutoff, 2).Return(1, nil).Once()

	count, err := f.svc.AutoCompleteSweep(context.Background(), now, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	f.repo.AssertExpectations(t)
}
