package app

import "strings"

const maxTracedQueryLength = 512

// formatDBQueryForTrace collapses whitespace so multi-line SQL reads as one
// span attribute, truncated to keep trace payloads small.
func formatDBQueryForTrace(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	normalized := strings.Join(fields, " ")
	if len(normalized) > maxTracedQueryLength {
		return normalized[:maxTracedQueryLength] + "..."
	}
	return normalized
}
