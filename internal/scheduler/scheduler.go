package scheduler

import (
	"context"
	"time"

	"velobook/internal/logger"
)

// BookingSweeper is the slice of the booking service the scheduler needs.
type BookingSweeper interface {
	AutoCompleteSweep(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// SubscriptionRoller is the slice of the subscription service the scheduler needs.
type SubscriptionRoller interface {
	RolloverDuePeriods(ctx context.Context, now time.Time, batchSize int) (renewed, expired int, err error)
}

// Scheduler runs the periodic maintenance sweeps: auto-completing bookings
// whose sessions finished long enough ago, and rolling subscription token
// periods over. Both sweeps use bounded batches with row locks, so several
// instances can run side by side without stepping on each other.
type Scheduler struct {
	bookingSvc BookingSweeper
	subSvc     SubscriptionRoller
	interval   time.Duration
	batchSize  int
}

func New(bookingSvc BookingSweeper, subSvc SubscriptionRoller, interval time.Duration, batchSize int) *Scheduler {
	return &Scheduler{
		bookingSvc: bookingSvc,
		subSvc:     subSvc,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// Start blocks until ctx is cancelled. Run it in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Infof("Scheduler started, sweeping every %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single sweep pass. Errors are logged, not returned: a
// failed pass just leaves work for the next tick.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := time.Now()

	completed, err := s.bookingSvc.AutoCompleteSweep(ctx, now, s.batchSize)
	if err != nil {
		logger.Errorf("Auto-complete sweep failed: %v", err)
	} else if completed > 0 {
		logger.Infof("Auto-completed %d bookings", completed)
	}

	renewed, expired, err := s.subSvc.RolloverDuePeriods(ctx, now, s.batchSize)
	if err != nil {
		logger.Errorf("Subscription rollover failed: %v", err)
	} else if renewed > 0 || expired > 0 {
		logger.Infof("Rolled over subscriptions: %d renewed, %d expired", renewed, expired)
	}
}
