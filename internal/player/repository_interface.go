package player

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, parentID int, name string, birthDate *time.Time, notes string) (*Player, error)
	GetByID(ctx context.Context, id int) (*Player, error)
	ListByParent(ctx context.Context, parentID int) ([]Player, error)
	BelongsToUser(ctx context.Context, playerID, userID int) (bool, error)
}
