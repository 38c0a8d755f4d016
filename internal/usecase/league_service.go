package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	"github.com/astatracker/fantacalcio-api/internal/domain/user"
	idgen "github.com/astatracker/fantacalcio-api/internal/platform/id"
)

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const joinCodeLength = 8
const joinCodeMaxAttempts = 5

type CreateLeagueInput struct {
	OwnerUserID string
	Name        string
	GameMode    string
	Budget      int
	MaxPlayers  int
	MaxMembers  int
	TeamName    string
}

type UpdateLeagueInput struct {
	UserID     string
	LeagueID   string
	Name       string
	Budget     int
	MaxPlayers int
	MaxMembers int
	Status     string
}

type JoinLeagueInput struct {
	UserID   string
	JoinCode string
	TeamName string
}

// imageSweeper removes every stored image under a league's key prefix.
// LeagueService depends on this narrow interface instead of FormationService
// so league deletion does not pull in the whole formation use case.
type imageSweeper interface {
	SweepLeagueImages(ctx context.Context, leagueID string) error
}

type LeagueService struct {
	leagueRepo league.Repository
	userRepo   user.Repository
	images     imageSweeper
	idGen      idgen.Generator
	now        func() time.Time
}

func NewLeagueService(
	leagueRepo league.Repository,
	userRepo user.Repository,
	images imageSweeper,
	idGen idgen.Generator,
) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		userRepo:   userRepo,
		images:     images,
		idGen:      idGen,
		now:        time.Now,
	}
}

func (s *LeagueService) Create(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Create")
	defer span.End()

	input.OwnerUserID = strings.TrimSpace(input.OwnerUserID)
	input.Name = strings.TrimSpace(input.Name)
	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.OwnerUserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	mode, err := league.ParseGameMode(input.GameMode)
	if err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Budget <= 0 {
		input.Budget = 500
	}
	if input.MaxPlayers <= 0 {
		input.MaxPlayers = 25
	}
	if input.MaxMembers <= 0 {
		input.MaxMembers = 10
	}
	if input.TeamName == "" {
		input.TeamName = input.Name
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	now := s.now().UTC()
	item := league.League{
		ID:          leagueID,
		Name:        input.Name,
		GameMode:    mode,
		Budget:      input.Budget,
		MaxPlayers:  input.MaxPlayers,
		MaxMembers:  input.MaxMembers,
		Status:      league.StatusActive,
		OwnerUserID: input.OwnerUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	membership := league.Membership{
		LeagueID: leagueID,
		UserID:   input.OwnerUserID,
		Role:     league.RoleMaster,
		TeamName: input.TeamName,
		JoinedAt: now,
	}

	for attempt := 0; attempt < joinCodeMaxAttempts; attempt++ {
		code, err := generateJoinCode(joinCodeLength)
		if err != nil {
			return league.League{}, fmt.Errorf("generate join code: %w", err)
		}
		if _, exists, err := s.leagueRepo.GetByJoinCode(ctx, code); err != nil {
			return league.League{}, fmt.Errorf("check join code collision: %w", err)
		} else if exists {
			continue
		}
		item.JoinCode = code

		if err := s.leagueRepo.CreateWithOwner(ctx, item, membership); err != nil {
			if isDuplicateConstraintError(err) {
				// lost the race on the join code, retry with a fresh one.
				continue
			}
			return league.League{}, fmt.Errorf("create league: %w", err)
		}
		return item, nil
	}

	return league.League{}, fmt.Errorf("create league: exhausted %d join code attempts", joinCodeMaxAttempts)
}

func (s *LeagueService) Get(ctx context.Context, userID, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Get")
	defer span.End()

	item, _, err := s.requireMembership(ctx, userID, leagueID)
	if err != nil {
		return league.League{}, err
	}
	return item, nil
}

func (s *LeagueService) ListMine(ctx context.Context, userID string) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListMine")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	items, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}
	return items, nil
}

func (s *LeagueService) Join(ctx context.Context, input JoinLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Join")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.JoinCode = strings.ToUpper(strings.TrimSpace(input.JoinCode))
	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.JoinCode == "" {
		return league.League{}, fmt.Errorf("%w: join code is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByJoinCode(ctx, input.JoinCode)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by join code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: unknown join code", ErrNotFound)
	}
	if input.TeamName == "" {
		input.TeamName = fmt.Sprintf("Team %s", input.UserID)
	}

	membership := league.Membership{
		LeagueID: item.ID,
		UserID:   input.UserID,
		Role:     league.RoleMember,
		TeamName: input.TeamName,
		JoinedAt: s.now().UTC(),
	}
	if err := s.leagueRepo.AddMember(ctx, membership, item.MaxMembers); err != nil {
		switch {
		case errors.Is(err, league.ErrFull):
			return league.League{}, fmt.Errorf("%w: league=%s", ErrLeagueFull, item.ID)
		case errors.Is(err, league.ErrDuplicateMember) || isDuplicateConstraintError(err):
			return league.League{}, fmt.Errorf("%w: league=%s", ErrAlreadyMember, item.ID)
		default:
			return league.League{}, fmt.Errorf("add league member: %w", err)
		}
	}
	return item, nil
}

// Invite adds an existing user to the league by username. Owner only.
func (s *LeagueService) Invite(ctx context.Context, ownerUserID, leagueID, username string) (league.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Invite")
	defer span.End()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return league.Membership{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	item, err := s.requireOwner(ctx, ownerUserID, leagueID)
	if err != nil {
		return league.Membership{}, err
	}

	invitee, exists, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return league.Membership{}, fmt.Errorf("get user by username: %w", err)
	}
	if !exists {
		return league.Membership{}, fmt.Errorf("%w: user %s not found", ErrNotFound, username)
	}

	membership := league.Membership{
		LeagueID: item.ID,
		UserID:   invitee.ID,
		Role:     league.RoleMember,
		TeamName: fmt.Sprintf("Team %s", invitee.DisplayName),
		JoinedAt: s.now().UTC(),
	}
	if err := s.leagueRepo.AddMember(ctx, membership, item.MaxMembers); err != nil {
		switch {
		case errors.Is(err, league.ErrFull):
			return league.Membership{}, fmt.Errorf("%w: league=%s", ErrLeagueFull, item.ID)
		case errors.Is(err, league.ErrDuplicateMember) || isDuplicateConstraintError(err):
			return league.Membership{}, fmt.Errorf("%w: league=%s", ErrAlreadyMember, item.ID)
		default:
			return league.Membership{}, fmt.Errorf("add league member: %w", err)
		}
	}
	return membership, nil
}

// Leave removes the caller from the league. Ownership moves to the earliest
// joined remaining member in the same transaction when the owner departs.
func (s *LeagueService) Leave(ctx context.Context, userID, leagueID string) (league.TransferResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Leave")
	defer span.End()

	if _, _, err := s.requireMembership(ctx, userID, leagueID); err != nil {
		return league.TransferResult{}, err
	}

	result, err := s.leagueRepo.RemoveMember(ctx, leagueID, userID)
	if err != nil {
		return league.TransferResult{}, fmt.Errorf("remove league member: %w", err)
	}
	if !result.Removed {
		return league.TransferResult{}, fmt.Errorf("%w: membership not found", ErrNotFound)
	}
	return result, nil
}

func (s *LeagueService) UpdateSettings(ctx context.Context, input UpdateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.UpdateSettings")
	defer span.End()

	item, err := s.requireOwner(ctx, input.UserID, input.LeagueID)
	if err != nil {
		return league.League{}, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		item.Name = name
	}
	if input.Budget > 0 {
		item.Budget = input.Budget
	}
	if input.MaxPlayers > 0 {
		item.MaxPlayers = input.MaxPlayers
	}
	if input.MaxMembers > 0 {
		item.MaxMembers = input.MaxMembers
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		parsed, err := league.ParseStatus(status)
		if err != nil {
			return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		item.Status = parsed
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.leagueRepo.UpdateSettings(ctx, item); err != nil {
		return league.League{}, fmt.Errorf("update league settings: %w", err)
	}
	return item, nil
}

// Delete removes the league and everything scoped to it. Stored formation
// images are swept after the row cascade succeeds; a sweep failure is
// returned so the caller can retry, the DB state is already consistent.
func (s *LeagueService) Delete(ctx context.Context, userID, leagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Delete")
	defer span.End()

	if _, err := s.requireOwner(ctx, userID, leagueID); err != nil {
		return err
	}

	if err := s.leagueRepo.Delete(ctx, leagueID); err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	if s.images != nil {
		if err := s.images.SweepLeagueImages(ctx, leagueID); err != nil {
			return fmt.Errorf("sweep league images: %w", err)
		}
	}
	return nil
}

func (s *LeagueService) Members(ctx context.Context, userID, leagueID string) ([]league.MemberOverview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Members")
	defer span.End()

	if _, _, err := s.requireMembership(ctx, userID, leagueID); err != nil {
		return nil, err
	}
	items, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}
	return items, nil
}

// Membership resolves the caller's membership for boundary middleware.
func (s *LeagueService) Membership(ctx context.Context, userID, leagueID string) (league.League, league.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Membership")
	defer span.End()

	return s.requireMembership(ctx, userID, leagueID)
}

func (s *LeagueService) requireMembership(ctx context.Context, userID, leagueID string) (league.League, league.Membership, error) {
	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" {
		return league.League{}, league.Membership{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if leagueID == "" {
		return league.League{}, league.Membership{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, league.Membership{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return league.League{}, league.Membership{}, fmt.Errorf("%w: league not found", ErrNotFound)
	}

	membership, isMember, err := s.leagueRepo.GetMembership(ctx, leagueID, userID)
	if err != nil {
		return league.League{}, league.Membership{}, fmt.Errorf("get league membership: %w", err)
	}
	if !isMember {
		return league.League{}, league.Membership{}, fmt.Errorf("%w: league=%s", ErrNotMember, leagueID)
	}
	return item, membership, nil
}

func (s *LeagueService) requireOwner(ctx context.Context, userID, leagueID string) (league.League, error) {
	item, membership, err := s.requireMembership(ctx, userID, leagueID)
	if err != nil {
		return league.League{}, err
	}
	if membership.Role != league.RoleMaster {
		return league.League{}, fmt.Errorf("%w: league master role required", ErrPermissionDenied)
	}
	return item, nil
}

func generateJoinCode(length int) (string, error) {
	if length < 6 {
		length = 6
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for join code: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(out), nil
}
