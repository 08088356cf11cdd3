package availability

import (
	"context"
	"errors"
)

var (
	ErrInvalidInterval = errors.New("end time must be after start time")
	ErrNotOwner        = errors.New("window does not belong to this trainer")
)

type Service interface {
	AddWindow(ctx context.Context, trainerID, weekday int, startTime, endTime string) (*Window, error)
	ListWindows(ctx context.Context, trainerID int) ([]Window, error)
	UpdateWindow(ctx context.Context, windowID, trainerID int, req *UpdateWindowRequest) (*Window, error)
	DeleteWindow(ctx context.Context, windowID, trainerID int) error
	IsWithinAvailability(ctx context.Context, trainerID, weekday, startMin, endMin int) (bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AddWindow(ctx context.Context, trainerID, weekday int, startTime, endTime string) (*Window, error) {
	startMin, err := ParseMinutes(startTime)
	if err != nil {
		return nil, err
	}
	endMin, err := ParseMinutes(endTime)
	if err != nil {
		return nil, err
	}

	if endMin <= startMin {
		return nil, ErrInvalidInterval
	}

	return s.repo.Create(ctx, trainerID, weekday, startTime, endTime)
}

func (s *service) ListWindows(ctx context.Context, trainerID int) ([]Window, error) {
	return s.repo.ListByTrainer(ctx, trainerID)
}

func (s *service) UpdateWindow(ctx context.Context, windowID, trainerID int, req *UpdateWindowRequest) (*Window, error) {
	window, err := s.repo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}

	if window.TrainerID != trainerID {
		return nil, ErrNotOwner
	}

	if req.Weekday != nil {
		window.Weekday = *req.Weekday
	}
	if req.StartTime != nil {
		window.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		window.EndTime = *req.EndTime
	}
	if req.IsActive != nil {
		window.IsActive = *req.IsActive
	}

	startMin, err := ParseMinutes(window.StartTime)
	if err != nil {
		return nil, err
	}
	endMin, err := ParseMinutes(window.EndTime)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		return nil, ErrInvalidInterval
	}

	return s.repo.Update(ctx, window)
}

func (s *service) DeleteWindow(ctx context.Context, windowID, trainerID int) error {
	window, err := s.repo.GetByID(ctx, windowID)
	if err != nil {
		return err
	}

	if window.TrainerID != trainerID {
		return ErrNotOwner
	}

	return s.repo.Delete(ctx, windowID)
}

// IsWithinAvailability reports whether [startMin, endMin) is fully contained
// in a single active window for the trainer on that weekday. Windows are
// checked independently and never merged across gaps.
func (s *service) IsWithinAvailability(ctx context.Context, trainerID, weekday, startMin, endMin int) (bool, error) {
	windows, err := s.repo.ListActiveForDay(ctx, trainerID, weekday)
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		windowStart, err := ParseMinutes(w.StartTime)
		if err != nil {
			continue
		}
		windowEnd, err := ParseMinutes(w.EndTime)
		if err != nil {
			continue
		}

		if windowStart <= startMin && endMin <= windowEnd {
			return true, nil
		}
	}

	return false, nil
}
