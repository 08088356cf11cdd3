package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"velobook/internal/auth"
	"velobook/internal/availability"
	"velobook/internal/catalog"
	"velobook/internal/logger"
	"velobook/internal/metrics"
	"velobook/internal/notify"
	"velobook/internal/player"
	"velobook/internal/subscription"
	"velobook/internal/user"
)

var (
	ErrInvalidBookingTime = errors.New("invalid booking time")
	ErrNotBookingOwner    = errors.New("booking does not belong to this user")
	ErrNotTrainerBooking  = errors.New("booking does not belong to this trainer")
	ErrPlayerNotOwned     = errors.New("player does not belong to this user")
	ErrUnknownStatus      = errors.New("unknown booking status")
)

const (
	MinAdvance         = 2 * time.Hour
	MaxAdvance         = 90 * 24 * time.Hour
	CancellationWindow = 24 * time.Hour
	AutoCompleteAfter  = 24 * time.Hour
)

type Service interface {
	Create(ctx context.Context, userID int, req *CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error)
	GetMyBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	GetTrainerBookings(ctx context.Context, trainerUserID int) ([]BookingWithDetails, error)
	ListByStatus(ctx context.Context, status Status) ([]Booking, error)
	Cancel(ctx context.Context, userID int, role string, bookingID int, reason string) error
	CancelForRefund(ctx context.Context, bookingID int, reason string) error
	MarkNoShow(ctx context.Context, trainerUserID, bookingID int) error
	AdminOverrideStatus(ctx context.Context, bookingID int, status Status) error
	AutoCompleteSweep(ctx context.Context, now time.Time, batchSize int) (int, error)
}

type service struct {
	repo        Repository
	playerRepo  player.Repository
	catalogRepo catalog.Repository
	availSvc    availability.Service
	subRepo     subscription.Repository
	userRepo    user.Repository
	notifier    *notify.Service
}

func NewService(
	repo Repository,
	playerRepo player.Repository,
	catalogRepo catalog.Repository,
	availSvc availability.Service,
	subRepo subscription.Repository,
	userRepo user.Repository,
	notifier *notify.Service,
) Service {
	return &service{
		repo:        repo,
		playerRepo:  playerRepo,
		catalogRepo: catalogRepo,
		availSvc:    availSvc,
		subRepo:     subRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Create reserves a slot in UNPAID state. No payment is taken here; the
// booking may sit UNPAID indefinitely until paid or cancelled.
func (s *service) Create(ctx context.Context, userID int, req *CreateBookingRequest) (*Booking, error) {
	now := time.Now()

	if req.ScheduledAt.Before(now.Add(MinAdvance)) {
		return nil, fmt.Errorf("%w: bookings require at least 2 hours notice", ErrInvalidBookingTime)
	}
	if req.ScheduledAt.After(now.Add(MaxAdvance)) {
		return nil, fmt.Errorf("%w: bookings cannot be more than 90 days ahead", ErrInvalidBookingTime)
	}

	if req.PlayerID != nil {
		owned, err := s.playerRepo.BelongsToUser(ctx, *req.PlayerID, userID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, ErrPlayerNotOwned
		}
	}

	opt, err := s.catalogRepo.GetOptionByID(ctx, req.OptionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.catalogRepo.GetTrainerByID(ctx, req.TrainerID); err != nil {
		return nil, err
	}

	weekday := int(req.ScheduledAt.Weekday())
	startMin := availability.MinuteOfDay(req.ScheduledAt)
	endMin := startMin + opt.DurationMinutes

	within, err := s.availSvc.IsWithinAvailability(ctx, req.TrainerID, weekday, startMin, endMin)
	if err != nil {
		return nil, err
	}
	if !within {
		return nil, fmt.Errorf("%w: requested interval is outside trainer availability", ErrInvalidBookingTime)
	}

	created, err := s.repo.CreateBooking(ctx, &Booking{
		UserID:          userID,
		PlayerID:        req.PlayerID,
		OptionID:        req.OptionID,
		TrainerID:       req.TrainerID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: opt.DurationMinutes,
		PricePaid:       opt.Price,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrBookingConflict) {
			metrics.BookingConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.RecordBooking(string(StatusUnpaid))
	logger.Infof("Booking %d created: trainer %d at %s for user %d",
		created.ID, created.TrainerID, created.ScheduledAt.Format(time.RFC3339), userID)

	return created, nil
}

func (s *service) GetBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.UserID == userID || role == auth.RoleAdmin {
		return b, nil
	}

	// Trainers can view bookings on their own schedule.
	if trainer, err := s.catalogRepo.GetTrainerByUserID(ctx, userID); err == nil && trainer.ID == b.TrainerID {
		return b, nil
	}

	return nil, ErrNotBookingOwner
}

func (s *service) GetMyBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetTrainerBookings(ctx context.Context, trainerUserID int) ([]BookingWithDetails, error) {
	trainer, err := s.catalogRepo.GetTrainerByUserID(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListByTrainer(ctx, trainer.ID)
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	if !ValidStatus(status) {
		return nil, ErrUnknownStatus
	}

	return s.repo.ListByStatus(ctx, status)
}

func (s *service) Cancel(ctx context.Context, userID int, role string, bookingID int, reason string) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if b.UserID != userID && role != auth.RoleAdmin {
		return ErrNotBookingOwner
	}

	if b.Status == StatusConfirmed && time.Now().After(b.ScheduledAt.Add(-CancellationWindow)) {
		return fmt.Errorf("%w: cancellation window passed", ErrInvalidBookingTime)
	}

	if err := s.repo.Cancel(ctx, bookingID, reason); err != nil {
		return err
	}

	if b.SubscriptionID != nil {
		if _, err := s.subRepo.ReturnToken(ctx, *b.SubscriptionID, b.ID); err != nil {
			logger.Errorf("Failed to return token for booking %d (subscription %d): %v", b.ID, *b.SubscriptionID, err)
		} else {
			metrics.TokensReturnedTotal.Inc()
		}
	}

	metrics.RecordBooking(string(StatusCancelled))
	metrics.BookingCancellationsTotal.Inc()
	logger.Infof("Booking %d cancelled by user %d: %s", bookingID, userID, reason)

	s.notifyCancelled(ctx, b, reason)

	return nil
}

// CancelForRefund is the settlement cascade: a completed refund always
// cancels its booking, with no ownership check and no cancellation window.
func (s *service) CancelForRefund(ctx context.Context, bookingID int, reason string) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.ForceCancel(ctx, bookingID, reason); err != nil {
		return err
	}

	if b.SubscriptionID != nil {
		if _, err := s.subRepo.ReturnToken(ctx, *b.SubscriptionID, b.ID); err != nil {
			logger.Errorf("Failed to return token for booking %d (subscription %d): %v", b.ID, *b.SubscriptionID, err)
		} else {
			metrics.TokensReturnedTotal.Inc()
		}
	}

	metrics.RecordBooking(string(StatusCancelled))
	metrics.BookingCancellationsTotal.Inc()

	s.notifyCancelled(ctx, b, reason)

	return nil
}

func (s *service) MarkNoShow(ctx context.Context, trainerUserID, bookingID int) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	trainer, err := s.catalogRepo.GetTrainerByUserID(ctx, trainerUserID)
	if err != nil {
		return err
	}
	if trainer.ID != b.TrainerID {
		return ErrNotTrainerBooking
	}

	if time.Now().Before(b.ScheduledAt) {
		return fmt.Errorf("%w: session has not started yet", ErrInvalidBookingTime)
	}

	if err := s.repo.MarkNoShow(ctx, bookingID); err != nil {
		return err
	}

	metrics.RecordBooking(string(StatusNoShow))
	logger.Infof("Booking %d marked as no-show by trainer %d", bookingID, trainer.ID)

	return nil
}

func (s *service) AdminOverrideStatus(ctx context.Context, bookingID int, status Status) error {
	if !ValidStatus(status) {
		return ErrUnknownStatus
	}

	if err := s.repo.OverrideStatus(ctx, bookingID, status); err != nil {
		return err
	}

	logger.Infof("Booking %d status overridden to %s", bookingID, status)
	return nil
}

// AutoCompleteSweep completes CONFIRMED bookings whose session ended at least
// AutoCompleteAfter ago, in bounded batches. Safe to re-run: COMPLETED rows
// are never selected again.
func (s *service) AutoCompleteSweep(ctx context.Context, now time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	cutoff := now.Add(-AutoCompleteAfter)
	total := 0

	for {
		n, err := s.repo.AutoCompleteBatch(ctx, cutoff, batchSize)
		if err != nil {
			return total, err
		}

		total += n
		if n > 0 {
			metrics.BookingsAutoCompletedTotal.Add(float64(n))
		}
		if n < batchSize {
			break
		}
	}

	if total > 0 {
		logger.Infof("Auto-complete sweep finished: %d bookings completed", total)
	}

	return total, nil
}

func (s *service) notifyCancelled(ctx context.Context, b *Booking, reason string) {
	if s.notifier == nil {
		return
	}

	u, err := s.userRepo.FindByID(ctx, b.UserID)
	if err != nil {
		return
	}

	sessionName := "Training Session"
	if opt, err := s.catalogRepo.GetOptionByID(ctx, b.OptionID); err == nil {
		sessionName = opt.SessionTypeName
	}

	if reason == "" {
		reason = "cancelled by request"
	}
	s.notifier.SendBookingCancellation(ctx, u.Email, u.Name, sessionName, b.ScheduledAt, reason)
}
