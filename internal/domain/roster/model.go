package roster

import (
	"fmt"
	"strings"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
)

type Status string

const (
	StatusAvailable    Status = "available"
	StatusOwned        Status = "owned"
	StatusRemoved      Status = "removed"
	StatusTakenByOther Status = "taken_by_other"
)

// LeaguePlayer is one league's mutable view of a catalog player. Exactly one
// row exists per (league, master player) pair. Status "removed" is a soft
// delete; rows are never physically deleted while the league exists.
//
// Status moves are deliberately unconstrained: any status is settable from
// any other, matching how auction tracking is actually used (undo, re-list,
// late corrections).
type LeaguePlayer struct {
	ID             string
	LeagueID       string
	MasterPlayerID string
	Status         Status
	Interesting    bool
	ExpectedPrice  int
	PaidPrice      int
	Buyer          string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Entry is a league player joined with its catalog data, the shape list and
// search endpoints return.
type Entry struct {
	LeaguePlayer
	Master catalog.MasterPlayer
}

// Filter narrows roster listings. All fields are optional; LeagueID is
// always applied by the repository regardless.
type Filter struct {
	Status      Status
	Role        string
	Search      string
	Interesting bool
}

// Stats summarizes a league's roster for the dashboard.
type Stats struct {
	Total        int
	Available    int
	Owned        int
	Removed      int
	TakenByOther int
	BudgetUsed   int
	OwnedByRole  map[string]int
}

func (p LeaguePlayer) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("league player id is required")
	}
	if strings.TrimSpace(p.LeagueID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(p.MasterPlayerID) == "" {
		return fmt.Errorf("master player id is required")
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return err
	}
	return nil
}

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusOwned:
		return StatusOwned, nil
	case StatusRemoved:
		return StatusRemoved, nil
	case StatusTakenByOther:
		return StatusTakenByOther, nil
	default:
		return "", fmt.Errorf("invalid player status %q", raw)
	}
}
