package league

import "context"

// Repository describes league-registry persistence needs from use cases.
//
// CreateWithOwner, AddMember, and RemoveMember are single atomic operations:
// a league row never exists without an owner membership, the member cap is
// enforced under the same transaction that inserts, and ownership transfer
// happens atomically with the departure.
type Repository interface {
	CreateWithOwner(ctx context.Context, l League, owner Membership) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByJoinCode(ctx context.Context, joinCode string) (League, bool, error)
	ListByUser(ctx context.Context, userID string) ([]League, error)
	UpdateSettings(ctx context.Context, l League) error
	Delete(ctx context.Context, leagueID string) error

	AddMember(ctx context.Context, m Membership, maxMembers int) error
	GetMembership(ctx context.Context, leagueID, userID string) (Membership, bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]MemberOverview, error)
	RemoveMember(ctx context.Context, leagueID, userID string) (TransferResult, error)
}
