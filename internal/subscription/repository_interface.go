package subscription

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID, playerID, optionID, tokensPerPeriod, periodDays int, autoRenew bool) (*Subscription, error)
	GetByID(ctx context.Context, id int) (*Subscription, error)
	GetActiveForPlayerAndOption(ctx context.Context, playerID, optionID int) (*Subscription, error)
	GetActiveWithTokensForUser(ctx context.Context, userID int) (*Subscription, error)
	ListByUser(ctx context.Context, userID int) ([]Subscription, error)
	ListActiveByUser(ctx context.Context, userID int) ([]Subscription, error)
	ListByPlayer(ctx context.Context, playerID int) ([]Subscription, error)

	ReturnToken(ctx context.Context, subscriptionID, bookingID int) (*TokenTransaction, error)
	RolloverDue(ctx context.Context, now time.Time, limit int) (renewed, expired int, err error)
	ListTransactions(ctx context.Context, subscriptionID, limit, offset int) ([]TokenTransaction, error)
}
