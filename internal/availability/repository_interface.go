package availability

import "context"

type Repository interface {
	Create(ctx context.Context, trainerID, weekday int, startTime, endTime string) (*Window, error)
	GetByID(ctx context.Context, id int) (*Window, error)
	ListByTrainer(ctx context.Context, trainerID int) ([]Window, error)
	ListActiveForDay(ctx context.Context, trainerID, weekday int) ([]Window, error)
	Update(ctx context.Context, w *Window) (*Window, error)
	Delete(ctx context.Context, id int) error
}
