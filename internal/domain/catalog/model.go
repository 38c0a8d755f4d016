package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Classic role tags: P (portiere), D (difensore), C (centrocampista),
// A (attaccante).
var classicRoles = map[string]struct{}{
	"P": {}, "D": {}, "C": {}, "A": {},
}

// Mantra role tags as used in list spreadsheets.
var mantraRoles = map[string]struct{}{
	"Por": {}, "Dc": {}, "Dd": {}, "Ds": {}, "B": {}, "E": {}, "M": {},
	"C": {}, "W": {}, "T": {}, "A": {}, "Pc": {},
}

// MasterPlayer is league-independent reference data for a real player,
// shared by every league's overlay.
type MasterPlayer struct {
	ID          string
	Name        string
	Club        string
	ClassicRole string
	MantraRoles []string
	ListPrice   int
	FVM         int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p MasterPlayer) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("master player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("master player name is required")
	}
	if p.ClassicRole == "" && len(p.MantraRoles) == 0 {
		return fmt.Errorf("master player needs at least one role tag")
	}
	return nil
}

func IsClassicRole(tag string) bool {
	_, ok := classicRoles[strings.TrimSpace(tag)]
	return ok
}

func IsMantraRole(tag string) bool {
	_, ok := mantraRoles[normalizeMantraTag(tag)]
	return ok
}

// ParseMantraRoles splits a semicolon- or comma-separated Mantra tag string
// ("Dc;Dd" style from list spreadsheets), dropping unrecognized tags.
func ParseMantraRoles(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == '/'
	})

	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tag := normalizeMantraTag(field)
		if _, ok := mantraRoles[tag]; !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func normalizeMantraTag(raw string) string {
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return ""
	}
	if len(tag) == 1 {
		return strings.ToUpper(tag)
	}
	return strings.ToUpper(tag[:1]) + strings.ToLower(tag[1:])
}

// NormalizeName collapses internal whitespace and title-cases each word so
// that spreadsheet spellings of the same player match a single catalog row.
func NormalizeName(raw string) string {
	fields := strings.Fields(raw)
	for i, field := range fields {
		fields[i] = titleCaseWord(field)
	}
	return strings.Join(fields, " ")
}

func titleCaseWord(word string) string {
	runes := []rune(strings.ToLower(word))
	upperNext := true
	for i, r := range runes {
		if upperNext {
			runes[i] = []rune(strings.ToUpper(string(r)))[0]
			upperNext = false
		}
		// Composite surnames keep capitals after separators ("N'Koulou").
		if r == '\'' || r == '-' || r == '.' {
			upperNext = true
		}
	}
	return string(runes)
}
