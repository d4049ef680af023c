// Package sql provides SQL text utilities: statement extraction from model
// output, single-statement normalization, read-only gating, and injection
// screening.
package sql

import (
	"strings"
)

// Normalize trims whitespace and strips a single trailing semicolon.
func Normalize(sqlQuery string) string {
	return stripTrailingSemicolon(strings.TrimSpace(sqlQuery))
}

// FirstStatement returns the text up to (not including) the first semicolon
// that appears outside string literals, or the whole input if there is none.
// Anything after a second statement boundary is discarded rather than
// forwarded to the database.
func FirstStatement(sqlQuery string) string {
	if idx := semicolonIndexOutsideStrings(sqlQuery); idx >= 0 {
		return sqlQuery[:idx]
	}
	return sqlQuery
}

// semicolonIndexOutsideStrings returns the byte index of the first semicolon
// outside single- or double-quoted literals, or -1.
func semicolonIndexOutsideStrings(sqlQuery string) int {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal

	for i, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return i
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Standard string literals escape a quote only by doubling ('').
			// A doubled quote exits and immediately re-enters on the next
			// quote, which correctly keeps us inside the string. Backslash is
			// an ordinary character here.
			if char == '\'' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' {
				state = stateNormal
			}
		}
	}

	return -1
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}
