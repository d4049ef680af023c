// Package models defines persisted domain records.
package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalystTurn is one persisted question/answer exchange, including the
// generated SQL and any execution error, kept for auditability.
type AnalystTurn struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Kind      string    `json:"kind"`
	SQL       string    `json:"sql,omitempty"`
	ExecError string    `json:"exec_error,omitempty"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
