package postgres

import (
	"database/sql"
	"strings"
)

const roleSeparator = ";"

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func joinTags(tags []string) string {
	return strings.Join(tags, roleSeparator)
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, roleSeparator)
}
