package cache

import (
	"context"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	basecache "github.com/astatracker/fantacalcio-api/internal/platform/cache"
)

// CatalogRepository caches master-player reads. The catalog changes only
// through imports, so hit rates are high and short TTLs are safe.
type CatalogRepository struct {
	next  catalog.Repository
	cache *basecache.Store
}

func NewCatalogRepository(next catalog.Repository, cache *basecache.Store) *CatalogRepository {
	return &CatalogRepository{next: next, cache: cache}
}

func (r *CatalogRepository) GetByID(ctx context.Context, playerID string) (catalog.MasterPlayer, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, masterPlayerByIDKey(playerID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		return cachedMasterPlayer{value: cloneMasterPlayer(item), exists: exists}, nil
	})
	if err != nil {
		return catalog.MasterPlayer{}, false, err
	}

	cached, _ := v.(cachedMasterPlayer)
	return cloneMasterPlayer(cached.value), cached.exists, nil
}

func (r *CatalogRepository) FindByNameAndClub(ctx context.Context, normalizedName, club string) (catalog.MasterPlayer, bool, error) {
	key := "master-player:name:" + normalizedName + ":club:" + club
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.FindByNameAndClub(ctx, normalizedName, club)
		if err != nil {
			return nil, err
		}
		return cachedMasterPlayer{value: cloneMasterPlayer(item), exists: exists}, nil
	})
	if err != nil {
		return catalog.MasterPlayer{}, false, err
	}

	cached, _ := v.(cachedMasterPlayer)
	return cloneMasterPlayer(cached.value), cached.exists, nil
}

func (r *CatalogRepository) Create(ctx context.Context, item catalog.MasterPlayer) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, masterPlayerByIDKey(item.ID))
	r.cache.DeletePrefix(ctx, "master-player:name:")
	return nil
}

func (r *CatalogRepository) Update(ctx context.Context, item catalog.MasterPlayer) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, masterPlayerByIDKey(item.ID))
	r.cache.DeletePrefix(ctx, "master-player:name:")
	return nil
}

type cachedMasterPlayer struct {
	value  catalog.MasterPlayer
	exists bool
}

func cloneMasterPlayer(item catalog.MasterPlayer) catalog.MasterPlayer {
	out := item
	out.MantraRoles = append([]string(nil), item.MantraRoles...)
	return out
}

func masterPlayerByIDKey(playerID string) string {
	return "master-player:id:" + playerID
}

// LeagueRepository caches the hot boundary lookups (league by id, membership
// by league and user) that run on every league-scoped request.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) CreateWithOwner(ctx context.Context, item league.League, owner league.Membership) error {
	if err := r.next.CreateWithOwner(ctx, item, owner); err != nil {
		return err
	}
	r.cache.Delete(ctx, leagueByIDKey(item.ID))
	r.cache.Delete(ctx, leagueByJoinCodeKey(item.JoinCode))
	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, leagueByIDKey(leagueID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) GetByJoinCode(ctx context.Context, joinCode string) (league.League, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, leagueByJoinCodeKey(joinCode), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByJoinCode(ctx, joinCode)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	return r.next.ListByUser(ctx, userID)
}

func (r *LeagueRepository) UpdateSettings(ctx context.Context, item league.League) error {
	if err := r.next.UpdateSettings(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, leagueByIDKey(item.ID))
	r.cache.Delete(ctx, leagueByJoinCodeKey(item.JoinCode))
	return nil
}

func (r *LeagueRepository) Delete(ctx context.Context, leagueID string) error {
	if err := r.next.Delete(ctx, leagueID); err != nil {
		return err
	}
	r.cache.Delete(ctx, leagueByIDKey(leagueID))
	r.cache.DeletePrefix(ctx, "league:join-code:")
	r.cache.DeletePrefix(ctx, membershipPrefix(leagueID))
	return nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, membership league.Membership, maxMembers int) error {
	if err := r.next.AddMember(ctx, membership, maxMembers); err != nil {
		return err
	}
	r.cache.Delete(ctx, membershipKey(membership.LeagueID, membership.UserID))
	return nil
}

func (r *LeagueRepository) GetMembership(ctx context.Context, leagueID, userID string) (league.Membership, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, membershipKey(leagueID, userID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetMembership(ctx, leagueID, userID)
		if err != nil {
			return nil, err
		}
		return cachedMembership{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.Membership{}, false, err
	}

	cached, _ := v.(cachedMembership)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.MemberOverview, error) {
	return r.next.ListMembers(ctx, leagueID)
}

func (r *LeagueRepository) RemoveMember(ctx context.Context, leagueID, userID string) (league.TransferResult, error) {
	result, err := r.next.RemoveMember(ctx, leagueID, userID)
	if err != nil {
		return league.TransferResult{}, err
	}
	// ownership may have moved, drop every membership entry for the league.
	r.cache.Delete(ctx, leagueByIDKey(leagueID))
	r.cache.DeletePrefix(ctx, membershipPrefix(leagueID))
	return result, nil
}

type cachedLeague struct {
	value  league.League
	exists bool
}

type cachedMembership struct {
	value  league.Membership
	exists bool
}

func leagueByIDKey(leagueID string) string {
	return "league:id:" + leagueID
}

func leagueByJoinCodeKey(joinCode string) string {
	return "league:join-code:" + joinCode
}

func membershipKey(leagueID, userID string) string {
	return membershipPrefix(leagueID) + userID
}

func membershipPrefix(leagueID string) string {
	return "league:member:" + leagueID + ":user:"
}
