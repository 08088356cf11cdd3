package subscription

import (
	"context"
	"errors"
	"time"

	"velobook/internal/catalog"
	"velobook/internal/logger"
	"velobook/internal/metrics"
	"velobook/internal/player"
)

var (
	ErrPlayerNotOwned        = errors.New("player does not belong to this user")
	ErrNotSubscriptionOption = errors.New("option is not subscription-priced")
	ErrNotSubscriptionOwner  = errors.New("subscription does not belong to this user")
)

const defaultPeriodDays = 28

type Service interface {
	Create(ctx context.Context, userID int, req *CreateSubscriptionRequest) (*Subscription, error)
	GetMySubscriptions(ctx context.Context, userID int) ([]Subscription, error)
	GetActiveSubscriptions(ctx context.Context, userID int) ([]Subscription, error)
	GetPlayerSubscriptions(ctx context.Context, userID, playerID int) ([]Subscription, error)
	GetTransactions(ctx context.Context, userID, subscriptionID, limit, offset int) ([]TokenTransaction, error)
	RolloverDuePeriods(ctx context.Context, now time.Time, batchSize int) (renewed, expired int, err error)
}

type service struct {
	repo        Repository
	playerRepo  player.Repository
	catalogRepo catalog.Repository
}

func NewService(repo Repository, playerRepo player.Repository, catalogRepo catalog.Repository) Service {
	return &service{
		repo:        repo,
		playerRepo:  playerRepo,
		catalogRepo: catalogRepo,
	}
}

func (s *service) Create(ctx context.Context, userID int, req *CreateSubscriptionRequest) (*Subscription, error) {
	owned, err := s.playerRepo.BelongsToUser(ctx, req.PlayerID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrPlayerNotOwned
	}

	opt, err := s.catalogRepo.GetOptionByID(ctx, req.OptionID)
	if err != nil {
		return nil, err
	}
	if !opt.IsSubscription() {
		return nil, ErrNotSubscriptionOption
	}

	if _, err := s.repo.GetActiveForPlayerAndOption(ctx, req.PlayerID, req.OptionID); err == nil {
		return nil, ErrDuplicateActive
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	periodDays := defaultPeriodDays
	if opt.BillingPeriodDays != nil && *opt.BillingPeriodDays > 0 {
		periodDays = *opt.BillingPeriodDays
	}

	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	sub, err := s.repo.Create(ctx, userID, req.PlayerID, req.OptionID, req.TokensPerPeriod, periodDays, autoRenew)
	if err != nil {
		return nil, err
	}

	metrics.SubscriptionsCreatedTotal.Inc()
	logger.Infof("Subscription %d created for player %d (user %d), %d tokens per %d days",
		sub.ID, req.PlayerID, userID, req.TokensPerPeriod, periodDays)

	return sub, nil
}

func (s *service) GetMySubscriptions(ctx context.Context, userID int) ([]Subscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetActiveSubscriptions(ctx context.Context, userID int) ([]Subscription, error) {
	return s.repo.ListActiveByUser(ctx, userID)
}

func (s *service) GetPlayerSubscriptions(ctx context.Context, userID, playerID int) ([]Subscription, error) {
	owned, err := s.playerRepo.BelongsToUser(ctx, playerID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrPlayerNotOwned
	}

	return s.repo.ListByPlayer(ctx, playerID)
}

func (s *service) GetTransactions(ctx context.Context, userID, subscriptionID, limit, offset int) ([]TokenTransaction, error) {
	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if sub.UserID != userID {
		return nil, ErrNotSubscriptionOwner
	}

	return s.repo.ListTransactions(ctx, subscriptionID, limit, offset)
}

// RolloverDuePeriods drains all due subscriptions in bounded batches so a
// long backlog never holds one transaction open.
func (s *service) RolloverDuePeriods(ctx context.Context, now time.Time, batchSize int) (renewed, expired int, err error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	for {
		r, e, err := s.repo.RolloverDue(ctx, now, batchSize)
		if err != nil {
			return renewed, expired, err
		}

		renewed += r
		expired += e

		if r > 0 {
			metrics.SubscriptionRolloversTotal.WithLabelValues("renewed").Add(float64(r))
		}
		if e > 0 {
			metrics.SubscriptionRolloversTotal.WithLabelValues("expired").Add(float64(e))
		}

		if r+e == 0 {
			return renewed, expired, nil
		}
	}
}
