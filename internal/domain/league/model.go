package league

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type GameMode string

const (
	GameModeClassic GameMode = "classic"
	GameModeMantra  GameMode = "mantra"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

type Role string

const (
	RoleMaster Role = "master"
	RoleMember Role = "member"
)

// Domain errors surfaced by repositories so use cases can translate them
// into the API taxonomy.
var (
	ErrFull            = errors.New("league is full")
	ErrDuplicateMember = errors.New("user is already a league member")
)

// League is a tenant: one auction room with its own budget, roster caps,
// player overlay, participants, and formations.
type League struct {
	ID          string
	Name        string
	JoinCode    string
	GameMode    GameMode
	Budget      int
	MaxPlayers  int
	MaxMembers  int
	Status      Status
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership links a user to a league. A league with at least one member
// always has exactly one RoleMaster membership.
type Membership struct {
	LeagueID string
	UserID   string
	Role     Role
	TeamName string
	JoinedAt time.Time
}

// MemberOverview is a membership joined with roster-derived statistics.
type MemberOverview struct {
	Membership
	Username     string
	DisplayName  string
	BudgetUsed   int
	PlayersOwned int
}

// TransferResult reports what happened when a member left.
type TransferResult struct {
	Removed  bool
	NewOwner *Membership
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if strings.TrimSpace(l.JoinCode) == "" {
		return fmt.Errorf("league join code is required")
	}
	if l.GameMode != GameModeClassic && l.GameMode != GameModeMantra {
		return fmt.Errorf("invalid game mode %q", l.GameMode)
	}
	if l.Budget <= 0 {
		return fmt.Errorf("league budget must be > 0")
	}
	if l.MaxPlayers <= 0 {
		return fmt.Errorf("league max players must be > 0")
	}
	if l.MaxMembers <= 0 {
		return fmt.Errorf("league max members must be > 0")
	}
	if strings.TrimSpace(l.OwnerUserID) == "" {
		return fmt.Errorf("league owner is required")
	}
	return nil
}

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, nil
	case StatusArchived:
		return StatusArchived, nil
	default:
		return "", fmt.Errorf("invalid league status %q (expected active or archived)", raw)
	}
}

func ParseGameMode(raw string) (GameMode, error) {
	switch GameMode(strings.ToLower(strings.TrimSpace(raw))) {
	case GameModeClassic:
		return GameModeClassic, nil
	case GameModeMantra:
		return GameModeMantra, nil
	default:
		return "", fmt.Errorf("invalid game mode %q (expected classic or mantra)", raw)
	}
}
