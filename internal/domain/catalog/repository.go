package catalog

import "context"

// Repository describes master-catalog persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (MasterPlayer, bool, error)
	FindByNameAndClub(ctx context.Context, normalizedName, club string) (MasterPlayer, bool, error)
	Create(ctx context.Context, p MasterPlayer) error
	Update(ctx context.Context, p MasterPlayer) error
}
