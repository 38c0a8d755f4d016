package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/astatracker/fantacalcio-api/internal/domain/formation"
)

type FormationRepository struct {
	mu    sync.RWMutex
	items map[string]formation.Formation
}

func NewFormationRepository() *FormationRepository {
	return &FormationRepository{items: make(map[string]formation.Formation)}
}

func (r *FormationRepository) List(_ context.Context, leagueID, userID string) ([]formation.Formation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]formation.Formation, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.UserID == userID {
			out = append(out, cloneFormation(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *FormationRepository) GetByID(_ context.Context, leagueID, formationID string) (formation.Formation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[formationID]
	if !ok || item.LeagueID != leagueID {
		return formation.Formation{}, false, nil
	}
	return cloneFormation(item), true, nil
}

func (r *FormationRepository) Create(_ context.Context, item formation.Formation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint: formations.public_id")
	}
	r.items[item.ID] = cloneFormation(item)
	return nil
}

func (r *FormationRepository) Update(_ context.Context, item formation.Formation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok || existing.LeagueID != item.LeagueID {
		return fmt.Errorf("update formation: not found")
	}
	r.items[item.ID] = cloneFormation(item)
	return nil
}

func (r *FormationRepository) Delete(_ context.Context, leagueID, formationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[formationID]
	if !ok || item.LeagueID != leagueID {
		return fmt.Errorf("delete formation: not found")
	}
	delete(r.items, formationID)
	return nil
}

func cloneFormation(f formation.Formation) formation.Formation {
	copied := f
	copied.PlayerIDs = append([]string(nil), f.PlayerIDs...)
	return copied
}
