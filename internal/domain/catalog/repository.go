package catalog

import "context"

type Repository interface {
	Insert(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindByIDs resolves products in one batch. Unknown ids are simply
	// absent from the result; callers detect them by comparing lengths.
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	// FindAll returns the catalog, newest first.
	FindAll(ctx context.Context) ([]*Product, error)
	// DecrementStock atomically applies stock -= quantity only when
	// stock >= quantity, returning ErrInsufficientStock otherwise. This is
	// the settlement primitive; plain reads are advisory.
	DecrementStock(ctx context.Context, id string, quantity int) error
	// IncrementStock restores stock, used to compensate a partially
	// settled order.
	IncrementStock(ctx context.Context, id string, quantity int) error
}
