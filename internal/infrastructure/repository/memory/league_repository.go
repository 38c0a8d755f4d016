package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
)

type LeagueRepository struct {
	mu           sync.RWMutex
	leagues      map[string]league.League
	members      map[string][]league.Membership
	users        *UserRepository
	roster       *RosterRepository
	participants *ParticipantRepository
	formations   *FormationRepository
}

// NewLeagueRepository builds a league store. The sibling stores stand in for
// the foreign keys the database enforces: users and roster feed ListMembers
// overviews, and roster, participants and formations are cascaded on Delete.
// Each may be nil in tests that do not touch it.
func NewLeagueRepository(users *UserRepository, rosterRepo *RosterRepository, participantRepo *ParticipantRepository, formationRepo *FormationRepository) *LeagueRepository {
	return &LeagueRepository{
		leagues:      make(map[string]league.League),
		members:      make(map[string][]league.Membership),
		users:        users,
		roster:       rosterRepo,
		participants: participantRepo,
		formations:   formationRepo,
	}
}

func (r *LeagueRepository) CreateWithOwner(_ context.Context, item league.League, owner league.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leagues[item.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint: leagues.public_id")
	}
	for _, existing := range r.leagues {
		if existing.JoinCode == item.JoinCode {
			return fmt.Errorf("duplicate key value violates unique constraint: leagues.join_code")
		}
	}
	r.leagues[item.ID] = item
	r.members[item.ID] = []league.Membership{owner}
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.leagues[leagueID]
	return item, ok, nil
}

func (r *LeagueRepository) GetByJoinCode(_ context.Context, joinCode string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.leagues {
		if item.JoinCode == joinCode {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) ListByUser(_ context.Context, userID string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0)
	for leagueID, memberships := range r.members {
		for _, membership := range memberships {
			if membership.UserID == userID {
				out = append(out, r.leagues[leagueID])
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *LeagueRepository) UpdateSettings(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leagues[item.ID]; !exists {
		return fmt.Errorf("update league: not found")
	}
	r.leagues[item.ID] = item
	return nil
}

func (r *LeagueRepository) Delete(_ context.Context, leagueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leagues[leagueID]; !exists {
		return fmt.Errorf("delete league: not found")
	}
	delete(r.leagues, leagueID)
	delete(r.members, leagueID)

	if r.roster != nil {
		r.roster.mu.Lock()
		for id, item := range r.roster.items {
			if item.LeagueID == leagueID {
				delete(r.roster.items, id)
			}
		}
		r.roster.mu.Unlock()
	}
	if r.participants != nil {
		r.participants.mu.Lock()
		for id, item := range r.participants.items {
			if item.LeagueID == leagueID {
				delete(r.participants.items, id)
			}
		}
		r.participants.mu.Unlock()
	}
	if r.formations != nil {
		r.formations.mu.Lock()
		for id, item := range r.formations.items {
			if item.LeagueID == leagueID {
				delete(r.formations.items, id)
			}
		}
		r.formations.mu.Unlock()
	}
	return nil
}

func (r *LeagueRepository) AddMember(_ context.Context, membership league.Membership, maxMembers int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	memberships, exists := r.members[membership.LeagueID]
	if !exists {
		return fmt.Errorf("add league member: league not found")
	}
	for _, existing := range memberships {
		if existing.UserID == membership.UserID {
			return league.ErrDuplicateMember
		}
	}
	if maxMembers > 0 && len(memberships) >= maxMembers {
		return league.ErrFull
	}
	r.members[membership.LeagueID] = append(memberships, membership)
	return nil
}

func (r *LeagueRepository) GetMembership(_ context.Context, leagueID, userID string) (league.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, membership := range r.members[leagueID] {
		if membership.UserID == userID {
			return membership, true, nil
		}
	}
	return league.Membership{}, false, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.MemberOverview, error) {
	r.mu.RLock()
	memberships := append([]league.Membership(nil), r.members[leagueID]...)
	r.mu.RUnlock()

	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].JoinedAt.Before(memberships[j].JoinedAt)
	})

	out := make([]league.MemberOverview, 0, len(memberships))
	for _, membership := range memberships {
		overview := league.MemberOverview{Membership: membership}
		if r.users != nil {
			if account, ok, err := r.users.GetByID(ctx, membership.UserID); err != nil {
				return nil, err
			} else if ok {
				overview.Username = account.Username
				overview.DisplayName = account.DisplayName
			}
		}
		if r.roster != nil {
			overview.BudgetUsed, overview.PlayersOwned = r.memberRosterTotals(leagueID, membership.TeamName)
		}
		out = append(out, overview)
	}
	return out, nil
}

// RemoveMember deletes the membership and promotes the earliest joined
// remaining member when the departing user held the master role. The league
// row survives even when the last member leaves.
func (r *LeagueRepository) RemoveMember(_ context.Context, leagueID, userID string) (league.TransferResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	memberships := r.members[leagueID]
	idx := -1
	for i, membership := range memberships {
		if membership.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return league.TransferResult{}, nil
	}

	departing := memberships[idx]
	remaining := append(memberships[:idx:idx], memberships[idx+1:]...)
	r.members[leagueID] = remaining

	result := league.TransferResult{Removed: true}
	if departing.Role == league.RoleMaster && len(remaining) > 0 {
		earliest := 0
		for i := 1; i < len(remaining); i++ {
			if remaining[i].JoinedAt.Before(remaining[earliest].JoinedAt) {
				earliest = i
			}
		}
		remaining[earliest].Role = league.RoleMaster
		promoted := remaining[earliest]
		result.NewOwner = &promoted

		item := r.leagues[leagueID]
		item.OwnerUserID = promoted.UserID
		r.leagues[leagueID] = item
	}
	return result, nil
}

func (r *LeagueRepository) memberRosterTotals(leagueID, teamName string) (budgetUsed, playersOwned int) {
	r.roster.mu.RLock()
	defer r.roster.mu.RUnlock()

	for _, item := range r.roster.items {
		if item.LeagueID != leagueID || item.Status != roster.StatusOwned {
			continue
		}
		if item.Buyer != teamName {
			continue
		}
		budgetUsed += item.PaidPrice
		playersOwned++
	}
	return budgetUsed, playersOwned
}
