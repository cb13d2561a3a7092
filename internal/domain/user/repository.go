package user

import "context"

type Repository interface {
	Insert(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDs resolves users in one batch; unknown ids are absent from
	// the result map.
	FindByIDs(ctx context.Context, ids []string) (map[string]*User, error)
}
