package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/astatracker/fantacalcio-api/internal/domain/participant"
)

type ParticipantRepository struct {
	mu    sync.RWMutex
	items map[string]participant.Participant
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{items: make(map[string]participant.Participant)}
}

func (r *ParticipantRepository) List(_ context.Context, leagueID string) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ParticipantRepository) GetByID(_ context.Context, leagueID, participantID string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[participantID]
	if !ok || item.LeagueID != leagueID {
		return participant.Participant{}, false, nil
	}
	return item, true, nil
}

func (r *ParticipantRepository) Create(_ context.Context, item participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.LeagueID == item.LeagueID && strings.EqualFold(existing.Name, item.Name) {
			return fmt.Errorf("duplicate key value violates unique constraint: participants.league_name")
		}
	}
	r.items[item.ID] = item
	return nil
}

func (r *ParticipantRepository) Update(_ context.Context, item participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok || existing.LeagueID != item.LeagueID {
		return fmt.Errorf("update participant: not found")
	}
	for id, other := range r.items {
		if id != item.ID && other.LeagueID == item.LeagueID && strings.EqualFold(other.Name, item.Name) {
			return fmt.Errorf("duplicate key value violates unique constraint: participants.league_name")
		}
	}
	r.items[item.ID] = item
	return nil
}

func (r *ParticipantRepository) Delete(_ context.Context, leagueID, participantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[participantID]
	if !ok || item.LeagueID != leagueID {
		return fmt.Errorf("delete participant: not found")
	}
	delete(r.items, participantID)
	return nil
}
