package sql

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoStatement indicates no recognizable SQL statement was found in the
// model output.
var ErrNoStatement = errors.New("no valid SQL found")

var (
	// fencedBlockPattern matches a markdown code block tagged as SQL.
	fencedBlockPattern = regexp.MustCompile("(?is)```sql\\s*(.*?)```")

	// statementStartPattern locates the first SELECT or WITH keyword.
	statementStartPattern = regexp.MustCompile(`(?i)\b(SELECT|WITH)\b`)
)

// ExtractStatement extracts exactly one statement from raw language-model
// output. Model output format is not guaranteed, so extraction is liberal in
// what it accepts while still returning a single clean statement:
//
//  1. A fenced ```sql block, taken verbatim, wins.
//  2. Otherwise everything from the first SELECT/WITH keyword up to the next
//     statement terminator or end of text.
//  3. Otherwise ErrNoStatement.
//
// A second statement boundary truncates to the first statement; multiple
// statements in one string must never reach the executor. Extraction is
// idempotent on already-clean input.
func ExtractStatement(raw string) (string, error) {
	var candidate string

	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if loc := statementStartPattern.FindStringIndex(raw); loc != nil {
		candidate = raw[loc[0]:]
	} else {
		return "", ErrNoStatement
	}

	candidate = FirstStatement(candidate)

	// Strip stray fences and backticks, then the trailing terminator.
	candidate = strings.ReplaceAll(candidate, "```", "")
	candidate = strings.ReplaceAll(candidate, "`", "")
	candidate = Normalize(candidate)
	candidate = stripWrappingQuotes(candidate)
	candidate = strings.TrimSpace(candidate)

	if candidate == "" {
		return "", ErrNoStatement
	}
	return candidate, nil
}

// stripWrappingQuotes removes one layer of matching quote characters wrapping
// the whole statement, e.g. '"SELECT 1"' -> 'SELECT 1'.
func stripWrappingQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '\'' || first == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
