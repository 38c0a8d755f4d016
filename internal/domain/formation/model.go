package formation

import (
	"fmt"
	"strings"
	"time"
)

// knownSchemas maps a formation layout name to the number of outfield
// players per line (defence, midfield, attack). The keeper is implicit.
var knownSchemas = map[string][3]int{
	"3-4-3": {3, 4, 3},
	"3-5-2": {3, 5, 2},
	"4-3-3": {4, 3, 3},
	"4-4-2": {4, 4, 2},
	"4-5-1": {4, 5, 1},
	"5-3-2": {5, 3, 2},
	"5-4-1": {5, 4, 1},
}

// Formation is a saved lineup belonging to one member of a league. PlayerIDs
// reference league players (not catalog rows) in pitch order: keeper first,
// then defence, midfield, attack.
type Formation struct {
	ID        string
	LeagueID  string
	UserID    string
	Name      string
	Schema    string
	PlayerIDs []string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f Formation) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("formation id is required")
	}
	if strings.TrimSpace(f.LeagueID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(f.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("formation name is required")
	}
	if _, ok := knownSchemas[f.Schema]; !ok {
		return fmt.Errorf("unknown formation schema %q", f.Schema)
	}
	if len(f.PlayerIDs) > SchemaSize(f.Schema) {
		return fmt.Errorf("formation holds at most %d players for schema %s", SchemaSize(f.Schema), f.Schema)
	}
	seen := make(map[string]struct{}, len(f.PlayerIDs))
	for _, id := range f.PlayerIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate player %s in formation", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// SchemaSize returns the full lineup size for a known schema including the
// keeper, or 0 for an unknown schema.
func SchemaSize(schema string) int {
	lines, ok := knownSchemas[schema]
	if !ok {
		return 0
	}
	return 1 + lines[0] + lines[1] + lines[2]
}

func IsKnownSchema(schema string) bool {
	_, ok := knownSchemas[schema]
	return ok
}
