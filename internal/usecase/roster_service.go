package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
)

type UpdatePlayerStatusInput struct {
	LeagueID      string
	PlayerID      string
	Status        string
	Interesting   *bool
	ExpectedPrice *int
	PaidPrice     *int
	Buyer         *string
	Notes         *string
}

type RosterStats struct {
	roster.Stats
	Budget          int
	BudgetRemaining int
}

type RosterService struct {
	rosterRepo roster.Repository
	now        func() time.Time
}

func NewRosterService(rosterRepo roster.Repository) *RosterService {
	return &RosterService{
		rosterRepo: rosterRepo,
		now:        time.Now,
	}
}

func (s *RosterService) List(ctx context.Context, leagueID string, filter roster.Filter) ([]roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.List")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if filter.Status != "" {
		parsed, err := roster.ParseStatus(string(filter.Status))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = parsed
	}
	if role := strings.TrimSpace(filter.Role); role != "" {
		if !catalog.IsClassicRole(role) && !catalog.IsMantraRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
		}
		filter.Role = role
	}
	filter.Search = strings.TrimSpace(filter.Search)

	items, err := s.rosterRepo.List(ctx, leagueID, filter)
	if err != nil {
		return nil, fmt.Errorf("list league players: %w", err)
	}
	return items, nil
}

func (s *RosterService) Get(ctx context.Context, leagueID, playerID string) (roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Get")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	playerID = strings.TrimSpace(playerID)
	if leagueID == "" || playerID == "" {
		return roster.Entry{}, fmt.Errorf("%w: league id and player id are required", ErrInvalidInput)
	}

	entry, exists, err := s.rosterRepo.GetByID(ctx, leagueID, playerID)
	if err != nil {
		return roster.Entry{}, fmt.Errorf("get league player: %w", err)
	}
	if !exists {
		return roster.Entry{}, fmt.Errorf("%w: player not found in this league", ErrNotFound)
	}
	return entry, nil
}

// UpdateStatus applies a partial update to a league player. Any status is
// reachable from any other: auctions get undone and re-run, tracking has to
// follow.
func (s *RosterService) UpdateStatus(ctx context.Context, input UpdatePlayerStatusInput) (roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.UpdateStatus")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.LeagueID == "" || input.PlayerID == "" {
		return roster.Entry{}, fmt.Errorf("%w: league id and player id are required", ErrInvalidInput)
	}

	entry, exists, err := s.rosterRepo.GetByID(ctx, input.LeagueID, input.PlayerID)
	if err != nil {
		return roster.Entry{}, fmt.Errorf("get league player: %w", err)
	}
	if !exists {
		return roster.Entry{}, fmt.Errorf("%w: player not found in this league", ErrNotFound)
	}

	item := entry.LeaguePlayer
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := roster.ParseStatus(raw)
		if err != nil {
			return roster.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		item.Status = status
	}
	if input.Interesting != nil {
		item.Interesting = *input.Interesting
	}
	if input.ExpectedPrice != nil {
		if *input.ExpectedPrice < 0 {
			return roster.Entry{}, fmt.Errorf("%w: expected price must be >= 0", ErrInvalidInput)
		}
		item.ExpectedPrice = *input.ExpectedPrice
	}
	if input.PaidPrice != nil {
		if *input.PaidPrice < 0 {
			return roster.Entry{}, fmt.Errorf("%w: paid price must be >= 0", ErrInvalidInput)
		}
		item.PaidPrice = *input.PaidPrice
	}
	if input.Buyer != nil {
		item.Buyer = strings.TrimSpace(*input.Buyer)
	}
	if input.Notes != nil {
		item.Notes = strings.TrimSpace(*input.Notes)
	}

	// leaving owned or taken state clears the sale record.
	if item.Status == roster.StatusAvailable || item.Status == roster.StatusRemoved {
		if input.PaidPrice == nil {
			item.PaidPrice = 0
		}
		if input.Buyer == nil {
			item.Buyer = ""
		}
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.rosterRepo.Update(ctx, item); err != nil {
		return roster.Entry{}, fmt.Errorf("update league player: %w", err)
	}
	entry.LeaguePlayer = item
	return entry, nil
}

func (s *RosterService) Stats(ctx context.Context, leagueID string, budget int) (RosterStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Stats")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return RosterStats{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	stats, err := s.rosterRepo.Stats(ctx, leagueID)
	if err != nil {
		return RosterStats{}, fmt.Errorf("compute roster stats: %w", err)
	}
	out := RosterStats{
		Stats:  stats,
		Budget: budget,
	}
	if budget > 0 {
		out.BudgetRemaining = budget - stats.BudgetUsed
	}
	return out, nil
}
