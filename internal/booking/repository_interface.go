package booking

import (
	"context"
	"time"
)

type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	ListByUser(ctx context.Context, userID int) ([]BookingWithDetails, error)
	ListByTrainer(ctx context.Context, trainerID int) ([]BookingWithDetails, error)
	ListByStatus(ctx context.Context, status Status) ([]Booking, error)
	SetPayInPerson(ctx context.Context, bookingID int, deadline time.Time) error
	Cancel(ctx context.Context, id int, reason string) error
	ForceCancel(ctx context.Context, id int, reason string) error
	MarkNoShow(ctx context.Context, id int) error
	OverrideStatus(ctx context.Context, id int, status Status) error
	AutoCompleteBatch(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
