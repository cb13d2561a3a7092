package order

import "context"

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// Update persists the order only if the stored version matches the
	// version the order was read at, then bumps it. Returns ErrConflict
	// when another writer got there first.
	Update(ctx context.Context, order *Order) error
	// FindByUser returns the user's orders, newest first.
	FindByUser(ctx context.Context, userID string) ([]*Order, error)
	// FindAll returns every order, newest first.
	FindAll(ctx context.Context) ([]*Order, error)
}
