package roster

import "context"

// Repository describes league-roster persistence needs from use cases.
// Every method filters by league id: the storage layer enforces tenant
// isolation even if a caller upstream forgot to.
type Repository interface {
	GetByID(ctx context.Context, leagueID, playerID string) (Entry, bool, error)
	GetByMasterPlayer(ctx context.Context, leagueID, masterPlayerID string) (LeaguePlayer, bool, error)
	List(ctx context.Context, leagueID string, filter Filter) ([]Entry, error)
	Update(ctx context.Context, p LeaguePlayer) error
	Stats(ctx context.Context, leagueID string) (Stats, error)

	// UpsertImported writes one import batch: rows absent for the league are
	// inserted with default overlay state, rows already present only get
	// their list fields (expected price) refreshed. Status, Buyer, and
	// PaidPrice are never touched, so re-imports cannot revert ownership.
	UpsertImported(ctx context.Context, leagueID string, players []LeaguePlayer) (inserted, updated int, err error)
}
