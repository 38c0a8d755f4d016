package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	items   map[string]roster.LeaguePlayer
	catalog *CatalogRepository
}

func NewRosterRepository(catalogRepo *CatalogRepository) *RosterRepository {
	return &RosterRepository{
		items:   make(map[string]roster.LeaguePlayer),
		catalog: catalogRepo,
	}
}

func (r *RosterRepository) GetByID(ctx context.Context, leagueID, playerID string) (roster.Entry, bool, error) {
	r.mu.RLock()
	item, ok := r.items[playerID]
	r.mu.RUnlock()
	if !ok || item.LeagueID != leagueID {
		return roster.Entry{}, false, nil
	}
	return r.toEntry(ctx, item)
}

func (r *RosterRepository) GetByMasterPlayer(_ context.Context, leagueID, masterPlayerID string) (roster.LeaguePlayer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.LeagueID == leagueID && item.MasterPlayerID == masterPlayerID {
			return item, true, nil
		}
	}
	return roster.LeaguePlayer{}, false, nil
}

func (r *RosterRepository) List(ctx context.Context, leagueID string, filter roster.Filter) ([]roster.Entry, error) {
	r.mu.RLock()
	players := make([]roster.LeaguePlayer, 0, len(r.items))
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			players = append(players, item)
		}
	}
	r.mu.RUnlock()

	out := make([]roster.Entry, 0, len(players))
	for _, item := range players {
		entry, ok, err := r.toEntry(ctx, item)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if matchesFilter(entry, filter) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Master.Name < out[j].Master.Name
	})
	return out, nil
}

func (r *RosterRepository) Update(_ context.Context, item roster.LeaguePlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok || existing.LeagueID != item.LeagueID {
		return fmt.Errorf("update league player: not found")
	}
	r.items[item.ID] = item
	return nil
}

func (r *RosterRepository) Stats(_ context.Context, leagueID string) (roster.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := roster.Stats{OwnedByRole: make(map[string]int)}
	for _, item := range r.items {
		if item.LeagueID != leagueID {
			continue
		}
		stats.Total++
		switch item.Status {
		case roster.StatusAvailable:
			stats.Available++
		case roster.StatusOwned:
			stats.Owned++
			stats.BudgetUsed += item.PaidPrice
			if r.catalog != nil {
				if master, ok := r.catalog.items[item.MasterPlayerID]; ok && master.ClassicRole != "" {
					stats.OwnedByRole[master.ClassicRole]++
				}
			}
		case roster.StatusRemoved:
			stats.Removed++
		case roster.StatusTakenByOther:
			stats.TakenByOther++
		}
	}
	return stats, nil
}

func (r *RosterRepository) UpsertImported(_ context.Context, leagueID string, players []roster.LeaguePlayer) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byMaster := make(map[string]string, len(r.items))
	for id, item := range r.items {
		if item.LeagueID == leagueID {
			byMaster[item.MasterPlayerID] = id
		}
	}

	inserted, updated := 0, 0
	for _, incoming := range players {
		if existingID, ok := byMaster[incoming.MasterPlayerID]; ok {
			existing := r.items[existingID]
			existing.UpdatedAt = incoming.UpdatedAt
			r.items[existingID] = existing
			updated++
			continue
		}
		r.items[incoming.ID] = incoming
		byMaster[incoming.MasterPlayerID] = incoming.ID
		inserted++
	}
	return inserted, updated, nil
}

func (r *RosterRepository) toEntry(ctx context.Context, item roster.LeaguePlayer) (roster.Entry, bool, error) {
	entry := roster.Entry{LeaguePlayer: item}
	if r.catalog == nil {
		return entry, true, nil
	}
	master, ok, err := r.catalog.GetByID(ctx, item.MasterPlayerID)
	if err != nil {
		return roster.Entry{}, false, err
	}
	if !ok {
		return roster.Entry{}, false, nil
	}
	entry.Master = master
	return entry, true, nil
}

func matchesFilter(entry roster.Entry, filter roster.Filter) bool {
	if filter.Status != "" && entry.Status != filter.Status {
		return false
	}
	if filter.Interesting && !entry.Interesting {
		return false
	}
	if filter.Role != "" && !hasRole(entry.Master, filter.Role) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(entry.Master.Name), needle) &&
			!strings.Contains(strings.ToLower(entry.Master.Club), needle) {
			return false
		}
	}
	return true
}

func hasRole(master catalog.MasterPlayer, role string) bool {
	if strings.EqualFold(master.ClassicRole, role) {
		return true
	}
	for _, tag := range master.MantraRoles {
		if strings.EqualFold(tag, role) {
			return true
		}
	}
	return false
}
