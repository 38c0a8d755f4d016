package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
)

type CatalogRepository struct {
	mu    sync.RWMutex
	items map[string]catalog.MasterPlayer
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{items: make(map[string]catalog.MasterPlayer)}
}

func (r *CatalogRepository) GetByID(_ context.Context, playerID string) (catalog.MasterPlayer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[playerID]
	if !ok {
		return catalog.MasterPlayer{}, false, nil
	}
	return cloneMasterPlayer(item), true, nil
}

func (r *CatalogRepository) FindByNameAndClub(_ context.Context, normalizedName, club string) (catalog.MasterPlayer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Name == normalizedName && strings.EqualFold(item.Club, club) {
			return cloneMasterPlayer(item), true, nil
		}
	}
	return catalog.MasterPlayer{}, false, nil
}

func (r *CatalogRepository) Create(_ context.Context, item catalog.MasterPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint: master_players.public_id")
	}
	for _, existing := range r.items {
		if existing.Name == item.Name && strings.EqualFold(existing.Club, item.Club) {
			return fmt.Errorf("duplicate key value violates unique constraint: master_players.name_club")
		}
	}
	r.items[item.ID] = cloneMasterPlayer(item)
	return nil
}

func (r *CatalogRepository) Update(_ context.Context, item catalog.MasterPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return fmt.Errorf("update master player: not found")
	}
	r.items[item.ID] = cloneMasterPlayer(item)
	return nil
}

func cloneMasterPlayer(p catalog.MasterPlayer) catalog.MasterPlayer {
	copied := p
	copied.MantraRoles = append([]string(nil), p.MantraRoles...)
	return copied
}
