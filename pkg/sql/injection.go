package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a detected SQL injection pattern in user input.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if a SQL injection pattern was detected
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckInput uses libinjection to detect SQL injection payloads in free-text
// user input. Questions are prose, not SQL: a question that fingerprints as an
// injection payload is refused before it reaches any model or the database.
//
// Returns nil if no injection is detected.
func CheckInput(value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
		}
	}
	return nil
}
