// Package apperrors defines sentinel errors shared across the engine.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestion indicates the request carried no usable question text.
	ErrEmptyQuestion = errors.New("question is required")

	// ErrQuestionRejected indicates the question was screened out before any
	// model call (e.g. it carried a SQL injection payload).
	ErrQuestionRejected = errors.New("question rejected")

	// ErrConnectivity indicates the database was unreachable or its catalog
	// could not be read. Terminal; not retried beyond the one-shot recovery.
	ErrConnectivity = errors.New("database unavailable")

	// ErrNoQueryFormed indicates the generator produced no usable statement
	// for a question that required one.
	ErrNoQueryFormed = errors.New("could not form a database query for that question")

	// ErrSynthesis indicates the final answer-generation call failed. Always
	// terminal; there is no further fallback once synthesis cannot run.
	ErrSynthesis = errors.New("answer synthesis failed")
)

// QueryExecutionError carries the database error text for a generated
// statement that the database rejected or failed to run. The message may echo
// the underlying database error for diagnostic transparency; callers decide
// whether to surface it.
type QueryExecutionError struct {
	SQL     string
	Message string
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %s", e.Message)
}
