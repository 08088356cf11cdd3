package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	GetByID(ctx context.Context, id int) (*Payment, error)
	GetByBooking(ctx context.Context, bookingID int) (*Payment, error)
	ListByUser(ctx context.Context, userID int) ([]Payment, error)
	Settle(ctx context.Context, id int, method Method, gatewayPaymentID *string, bookingID int, subscriptionID *int) (*Payment, error)
	MarkRefunded(ctx context.Context, id int, reason string) (*Payment, error)
	Delete(ctx context.Context, id int) error
}
