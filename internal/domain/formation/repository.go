package formation

import "context"

type Repository interface {
	List(ctx context.Context, leagueID, userID string) ([]Formation, error)
	GetByID(ctx context.Context, leagueID, formationID string) (Formation, bool, error)
	Create(ctx context.Context, f Formation) error
	Update(ctx context.Context, f Formation) error
	Delete(ctx context.Context, leagueID, formationID string) error
}

// ImageStore holds exported formation snapshots (rendered pitch images).
// Keys are scoped by league so a league delete can sweep everything in one
// List+Delete pass.
type ImageStore interface {
	Put(ctx context.Context, key string, contentType string, body []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
}
