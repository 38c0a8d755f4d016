package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/participant"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	idgen "github.com/astatracker/fantacalcio-api/internal/platform/id"
)

type CreateParticipantInput struct {
	LeagueID string
	Name     string
	Budget   int
}

type UpdateParticipantInput struct {
	LeagueID      string
	ParticipantID string
	Name          string
	Budget        *int
}

type AssignPlayerInput struct {
	LeagueID      string
	ParticipantID string
	PlayerID      string
	PaidPrice     int
}

type ParticipantService struct {
	participantRepo participant.Repository
	rosterRepo      roster.Repository
	idGen           idgen.Generator
	now             func() time.Time
}

func NewParticipantService(
	participantRepo participant.Repository,
	rosterRepo roster.Repository,
	idGen idgen.Generator,
) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		rosterRepo:      rosterRepo,
		idGen:           idGen,
		now:             time.Now,
	}
}

func (s *ParticipantService) List(ctx context.Context, leagueID string) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.List")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	items, err := s.participantRepo.List(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return items, nil
}

func (s *ParticipantService) Create(ctx context.Context, input CreateParticipantInput) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Create")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.Name = strings.TrimSpace(input.Name)
	if input.LeagueID == "" {
		return participant.Participant{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return participant.Participant{}, fmt.Errorf("%w: participant name is required", ErrInvalidInput)
	}
	if input.Budget < 0 {
		return participant.Participant{}, fmt.Errorf("%w: budget must be >= 0", ErrInvalidInput)
	}

	participantID, err := s.idGen.NewID()
	if err != nil {
		return participant.Participant{}, fmt.Errorf("generate participant id: %w", err)
	}
	now := s.now().UTC()
	item := participant.Participant{
		ID:        participantID,
		LeagueID:  input.LeagueID,
		Name:      input.Name,
		Budget:    input.Budget,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.participantRepo.Create(ctx, item); err != nil {
		if isDuplicateConstraintError(err) {
			return participant.Participant{}, fmt.Errorf("%w: participant name already exists in this league", ErrDuplicate)
		}
		return participant.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	return item, nil
}

func (s *ParticipantService) Update(ctx context.Context, input UpdateParticipantInput) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Update")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	if input.LeagueID == "" || input.ParticipantID == "" {
		return participant.Participant{}, fmt.Errorf("%w: league id and participant id are required", ErrInvalidInput)
	}

	item, exists, err := s.participantRepo.GetByID(ctx, input.LeagueID, input.ParticipantID)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	if !exists {
		return participant.Participant{}, fmt.Errorf("%w: participant not found", ErrNotFound)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		item.Name = name
	}
	if input.Budget != nil {
		if *input.Budget < 0 {
			return participant.Participant{}, fmt.Errorf("%w: budget must be >= 0", ErrInvalidInput)
		}
		item.Budget = *input.Budget
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.participantRepo.Update(ctx, item); err != nil {
		if isDuplicateConstraintError(err) {
			return participant.Participant{}, fmt.Errorf("%w: participant name already exists in this league", ErrDuplicate)
		}
		return participant.Participant{}, fmt.Errorf("update participant: %w", err)
	}
	return item, nil
}

func (s *ParticipantService) Delete(ctx context.Context, leagueID, participantID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Delete")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	participantID = strings.TrimSpace(participantID)
	if leagueID == "" || participantID == "" {
		return fmt.Errorf("%w: league id and participant id are required", ErrInvalidInput)
	}

	if _, exists, err := s.participantRepo.GetByID(ctx, leagueID, participantID); err != nil {
		return fmt.Errorf("get participant: %w", err)
	} else if !exists {
		return fmt.Errorf("%w: participant not found", ErrNotFound)
	}

	if err := s.participantRepo.Delete(ctx, leagueID, participantID); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

// AssignPlayer marks a league player as bought by a virtual participant.
func (s *ParticipantService) AssignPlayer(ctx context.Context, input AssignPlayerInput) (roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.AssignPlayer")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.LeagueID == "" || input.ParticipantID == "" || input.PlayerID == "" {
		return roster.Entry{}, fmt.Errorf("%w: league id, participant id, and player id are required", ErrInvalidInput)
	}
	if input.PaidPrice < 0 {
		return roster.Entry{}, fmt.Errorf("%w: paid price must be >= 0", ErrInvalidInput)
	}

	buyer, exists, err := s.participantRepo.GetByID(ctx, input.LeagueID, input.ParticipantID)
	if err != nil {
		return roster.Entry{}, fmt.Errorf("get participant: %w", err)
	}
	if !exists {
		return roster.Entry{}, fmt.Errorf("%w: participant not found", ErrNotFound)
	}

	entry, exists, err := s.rosterRepo.GetByID(ctx, input.LeagueID, input.PlayerID)
	if err != nil {
		return roster.Entry{}, fmt.Errorf("get league player: %w", err)
	}
	if !exists {
		return roster.Entry{}, fmt.Errorf("%w: player not found in this league", ErrNotFound)
	}

	item := entry.LeaguePlayer
	item.Status = roster.StatusTakenByOther
	item.Buyer = buyer.Name
	item.PaidPrice = input.PaidPrice
	item.UpdatedAt = s.now().UTC()

	if err := s.rosterRepo.Update(ctx, item); err != nil {
		return roster.Entry{}, fmt.Errorf("assign league player: %w", err)
	}
	entry.LeaguePlayer = item
	return entry, nil
}
