package participant

import (
	"fmt"
	"strings"
	"time"
)

// Participant is a virtual competitor inside a league: someone at the
// auction table who is not a registered account. League players taken by
// them reference the participant by name in the Buyer field.
type Participant struct {
	ID        string
	LeagueID  string
	Name      string
	Budget    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Participant) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("participant id is required")
	}
	if strings.TrimSpace(p.LeagueID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("participant name is required")
	}
	return nil
}
