package app

import (
	"net/url"
	"strings"
)

const preparedBinaryFlag = "disable_prepared_binary_result"

// normalizeDBURL forces the prepared binary result flag onto URL-style DSNs
// when the toggle is on. An explicit value in the DSN wins.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Has(preparedBinaryFlag) {
		return raw
	}
	query.Set(preparedBinaryFlag, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL extracts the database name from either a postgres:// URL or
// a key=value DSN. Returns "" when no name is present.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if parsed, err := url.Parse(trimmed); err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		key, value, found := strings.Cut(token, "=")
		if !found || key != "dbname" {
			continue
		}
		if name := strings.Trim(strings.TrimSpace(value), `"'`); name != "" {
			return name
		}
	}

	return ""
}
