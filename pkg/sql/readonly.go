package sql

import (
	"regexp"
	"strings"
)

// modifyingCTEPattern matches CTEs that contain data-modifying operations.
// Example: WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE)\b`)

// IsReadOnly reports whether the statement is a plain SELECT or a WITH query
// without data-modifying CTEs. Generated SQL is read-only by contract, not by
// construction, so the executor gates on this before touching the database.
func IsReadOnly(sqlQuery string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(sqlQuery))

	switch {
	case strings.HasPrefix(normalized, "SELECT"):
		return true
	case strings.HasPrefix(normalized, "WITH"):
		return !modifyingCTEPattern.MatchString(sqlQuery)
	default:
		return false
	}
}
