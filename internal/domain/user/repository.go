package user

import "context"

// Repository describes credential-store persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, userID string) (User, bool, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	Update(ctx context.Context, u User) error
}
