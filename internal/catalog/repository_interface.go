package catalog

import "context"

type Repository interface {
	CreateTrainer(ctx context.Context, userID int, name, bio, specialty string) (*Trainer, error)
	GetTrainerByID(ctx context.Context, id int) (*Trainer, error)
	GetTrainerByUserID(ctx context.Context, userID int) (*Trainer, error)
	ListTrainers(ctx context.Context) ([]Trainer, error)

	CreateSessionType(ctx context.Context, name, description string, durationMinutes int) (*SessionType, error)
	GetSessionTypeByID(ctx context.Context, id int) (*SessionType, error)
	ListSessionTypes(ctx context.Context) ([]SessionType, error)

	CreateOption(ctx context.Context, opt *SessionTypeOption) (*SessionTypeOption, error)
	GetOptionByID(ctx context.Context, id int) (*OptionDetails, error)
	ListOptionsBySessionType(ctx context.Context, sessionTypeID int) ([]SessionTypeOption, error)
	DeactivateOption(ctx context.Context, id int) error
}
