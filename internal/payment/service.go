package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"velobook/internal/auth"
	"velobook/internal/booking"
	"velobook/internal/logger"
	"velobook/internal/metrics"
	"velobook/internal/notify"
	"velobook/internal/subscription"
	"velobook/internal/user"
)

var (
	ErrAlreadyPaid     = errors.New("booking is already paid")
	ErrPaymentPending  = errors.New("a payment for this booking is already pending")
	ErrInvalidState    = errors.New("invalid payment state")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrNotPaymentOwner = errors.New("payment does not belong to this user")
	ErrRefundFailed    = errors.New("refund failed")
)

// FailedError is a gateway decline translated to a fixed client-facing code.
type FailedError struct {
	Code   string
	Detail string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("payment failed (%s): %s", e.Code, e.Detail)
}

const PayInPersonCutoff = 12 * time.Hour

type Service interface {
	ProcessPayment(ctx context.Context, userID int, req *ProcessPaymentRequest) (*Payment, error)
	ReceiveInPerson(ctx context.Context, paymentID int, method Method) (*Payment, error)
	Refund(ctx context.Context, paymentID int, reason string) (*Payment, error)
	GetPayment(ctx context.Context, userID int, role string, paymentID int) (*Payment, error)
	GetByBooking(ctx context.Context, userID int, role string, bookingID int) (*Payment, error)
	GetMyPayments(ctx context.Context, userID int) ([]Payment, error)
}

type service struct {
	repo        Repository
	gateway     Gateway
	bookingRepo booking.Repository
	bookingSvc  booking.Service
	subRepo     subscription.Repository
	userRepo    user.Repository
	notifier    *notify.Service
}

func NewService(
	repo Repository,
	gateway Gateway,
	bookingRepo booking.Repository,
	bookingSvc booking.Service,
	subRepo subscription.Repository,
	userRepo user.Repository,
	notifier *notify.Service,
) Service {
	return &service{
		repo:        repo,
		gateway:     gateway,
		bookingRepo: bookingRepo,
		bookingSvc:  bookingSvc,
		subRepo:     subRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// ProcessPayment settles an UNPAID booking by the requested method. The
// PENDING insert claims the booking before anything else happens, so two
// simultaneous attempts cannot both charge: the UNIQUE constraint on
// booking_id lets exactly one through.
func (s *service) ProcessPayment(ctx context.Context, userID int, req *ProcessPaymentRequest) (*Payment, error) {
	b, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, booking.ErrNotBookingOwner
	}

	if existing, err := s.repo.GetByBooking(ctx, b.ID); err == nil {
		switch existing.Status {
		case StatusCompleted, StatusRefunded:
			return nil, ErrAlreadyPaid
		case StatusPending:
			return nil, ErrPaymentPending
		}
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}

	if b.Status != booking.StatusUnpaid {
		return nil, fmt.Errorf("%w: booking is not payable", ErrInvalidState)
	}

	switch {
	case req.PayInPerson:
		return s.startInPerson(ctx, userID, b)
	case req.UseToken:
		return s.payWithToken(ctx, userID, b)
	default:
		return s.payWithCard(ctx, userID, b, req.SourceToken)
	}
}

func (s *service) startInPerson(ctx context.Context, userID int, b *booking.Booking) (*Payment, error) {
	deadline := b.ScheduledAt.Add(-PayInPersonCutoff)
	if time.Now().After(deadline) {
		return nil, fmt.Errorf("%w: too close to session for pay-in-person", ErrInvalidState)
	}

	p, err := s.createPending(ctx, userID, b, MethodCash)
	if err != nil {
		return nil, err
	}

	if err := s.bookingRepo.SetPayInPerson(ctx, b.ID, deadline); err != nil {
		s.repo.Delete(ctx, p.ID)
		return nil, err
	}

	metrics.RecordPayment(string(MethodCash), "pending")
	logger.Infof("Payment %d pending in-person for booking %d, due by %s", p.ID, b.ID, deadline.Format(time.RFC3339))

	return p, nil
}

func (s *service) payWithToken(ctx context.Context, userID int, b *booking.Booking) (*Payment, error) {
	var sub *subscription.Subscription
	var err error

	if b.PlayerID != nil {
		sub, err = s.subRepo.GetActiveForPlayerAndOption(ctx, *b.PlayerID, b.OptionID)
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			err = subscription.ErrNoActiveSubscription
		}
	} else {
		sub, err = s.subRepo.GetActiveWithTokensForUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	p, err := s.createPending(ctx, userID, b, MethodToken)
	if err != nil {
		return nil, err
	}

	// One transaction burns the token, completes the payment and confirms
	// the booking. A failure anywhere rolls the whole settlement back, so
	// the only cleanup left is the claim row.
	completed, err := s.repo.Settle(ctx, p.ID, MethodToken, nil, b.ID, &sub.ID)
	if err != nil {
		s.repo.Delete(ctx, p.ID)
		metrics.RecordPayment(string(MethodToken), "failed")
		return nil, err
	}

	metrics.TokensUsedTotal.Inc()
	metrics.RecordPayment(string(MethodToken), "completed")
	metrics.RecordBooking(string(booking.StatusConfirmed))
	logger.Infof("Payment %d completed with token from subscription %d for booking %d", completed.ID, sub.ID, b.ID)

	s.notifySettled(ctx, completed, b)

	return completed, nil
}

func (s *service) payWithCard(ctx context.Context, userID int, b *booking.Booking, sourceToken string) (*Payment, error) {
	p, err := s.createPending(ctx, userID, b, MethodCardOnline)
	if err != nil {
		return nil, err
	}

	amountMinor := minorUnits(b.PricePaid)
	referenceID := fmt.Sprintf("booking-%d", b.ID)

	gw, err := s.gateway.CreatePayment(ctx, amountMinor, Currency, sourceToken, referenceID)
	if err != nil {
		// The attempt failed: discard the claim so the client can retry.
		s.repo.Delete(ctx, p.ID)
		metrics.RecordPayment(string(MethodCardOnline), "failed")

		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			code := mapGatewayCode(gwErr.Code)
			logger.Errorf("Gateway declined payment for booking %d: %s (%s)", b.ID, gwErr.Code, gwErr.Detail)
			return nil, &FailedError{Code: code, Detail: gwErr.Detail}
		}
		return nil, &FailedError{Code: CodePaymentError, Detail: err.Error()}
	}

	// The card was charged: the claim must survive a settlement failure so
	// a retry cannot charge it again while the gateway payment is
	// reconciled.
	completed, err := s.repo.Settle(ctx, p.ID, MethodCardOnline, &gw.ID, b.ID, nil)
	if err != nil {
		logger.Errorf("Settlement of booking %d failed after gateway charge %s: %v", b.ID, gw.ID, err)
		return nil, err
	}

	metrics.RecordPayment(string(MethodCardOnline), "completed")
	metrics.RecordBooking(string(booking.StatusConfirmed))
	logger.Infof("Payment %d completed via gateway (%s) for booking %d", completed.ID, gw.ID, b.ID)

	s.notifySettled(ctx, completed, b)

	return completed, nil
}

func (s *service) createPending(ctx context.Context, userID int, b *booking.Booking, method Method) (*Payment, error) {
	p, err := s.repo.Create(ctx, &Payment{
		UserID:    userID,
		BookingID: b.ID,
		Status:    StatusPending,
		Method:    method,
		Amount:    b.PricePaid,
		Currency:  Currency,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			return nil, ErrPaymentPending
		}
		return nil, err
	}

	return p, nil
}

// ReceiveInPerson records cash or terminal payment collected by staff for a
// booking that chose pay-in-person.
func (s *service) ReceiveInPerson(ctx context.Context, paymentID int, method Method) (*Payment, error) {
	if method != MethodCash && method != MethodCardInPerson {
		return nil, ErrInvalidMethod
	}

	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, fmt.Errorf("%w: payment is not pending", ErrInvalidState)
	}

	b, err := s.bookingRepo.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if !b.PayInPerson {
		return nil, fmt.Errorf("%w: payment was not arranged as pay-in-person", ErrInvalidState)
	}

	completed, err := s.repo.Settle(ctx, p.ID, method, nil, b.ID, nil)
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment(string(method), "completed")
	metrics.RecordBooking(string(booking.StatusConfirmed))
	logger.Infof("Payment %d received in person (%s) for booking %d", completed.ID, method, b.ID)

	s.notifySettled(ctx, completed, b)

	return completed, nil
}

// Refund reverses a COMPLETED payment and cancels the booking. For online
// card payments the gateway refund happens first: if it fails, nothing
// changes and the payment stays COMPLETED.
func (s *service) Refund(ctx context.Context, paymentID int, reason string) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: only completed payments can be refunded", ErrInvalidState)
	}

	if p.Method == MethodCardOnline {
		if p.GatewayPaymentID == nil {
			return nil, fmt.Errorf("%w: payment has no gateway reference", ErrRefundFailed)
		}

		amountMinor := minorUnits(p.Amount)
		if _, err := s.gateway.RefundPayment(ctx, amountMinor, p.Currency, *p.GatewayPaymentID, reason); err != nil {
			metrics.RecordRefund("failed")
			logger.Errorf("Gateway refund failed for payment %d: %v", p.ID, err)
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
	}

	refunded, err := s.repo.MarkRefunded(ctx, p.ID, reason)
	if err != nil {
		return nil, err
	}

	cascadeReason := "Payment refunded: " + reason
	if err := s.bookingSvc.CancelForRefund(ctx, p.BookingID, cascadeReason); err != nil {
		logger.Errorf("Failed to cancel booking %d after refund: %v", p.BookingID, err)
	}

	metrics.RecordRefund("completed")
	logger.Infof("Payment %d refunded: %s", p.ID, reason)

	if s.notifier != nil {
		if u, err := s.userRepo.FindByID(ctx, p.UserID); err == nil {
			s.notifier.SendRefundNotice(ctx, u.Email, u.Name, "Training Session", p.Amount, reason)
		}
	}

	return refunded, nil
}

func (s *service) GetPayment(ctx context.Context, userID int, role string, paymentID int) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID && role != auth.RoleAdmin {
		return nil, ErrNotPaymentOwner
	}

	return p, nil
}

func (s *service) GetByBooking(ctx context.Context, userID int, role string, bookingID int) (*Payment, error) {
	p, err := s.repo.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID && role != auth.RoleAdmin {
		return nil, ErrNotPaymentOwner
	}

	return p, nil
}

func (s *service) GetMyPayments(ctx context.Context, userID int) ([]Payment, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) notifySettled(ctx context.Context, p *Payment, b *booking.Booking) {
	if s.notifier == nil {
		return
	}

	u, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return
	}

	s.notifier.SendBookingConfirmation(ctx, u.Email, u.Name, "Training Session", b.ScheduledAt)
	s.notifier.SendPaymentReceipt(ctx, u.Email, u.Name, "Training Session", p.Amount, string(p.Method))
}

// minorUnits converts a decimal amount to the integer cents the gateway
// expects. Rounding, not truncation: 19.99 has no exact float64 form and
// truncating it would charge 1998.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func mapGatewayCode(code string) string {
	switch code {
	case "GENERIC_DECLINE", "CARD_DECLINED":
		return CodeCardDeclined
	case "INSUFFICIENT_FUNDS":
		return CodeInsufficientFunds
	case "CARD_EXPIRED", "EXPIRED_CARD":
		return CodeCardExpired
	case "INVALID_CARD", "INVALID_CARD_DATA", "INVALID_EXPIRATION", "CVV_FAILURE":
		return CodeInvalidCard
	default:
		return CodePaymentError
	}
}
