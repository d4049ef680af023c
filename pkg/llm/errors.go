package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies LLM failures.
type ErrorType string

const (
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeEndpoint ErrorType = "endpoint"
	ErrorTypeModel    ErrorType = "model"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents a structured LLM error with classification.
type Error struct {
	Type       ErrorType
	Message    string
	Retryable  bool
	Cause      error
	StatusCode int
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

func newError(errType ErrorType, message string, retryable bool, cause error, statusCode int) *Error {
	return &Error{
		Type:       errType,
		Message:    message,
		Retryable:  retryable,
		Cause:      cause,
		StatusCode: statusCode,
	}
}

// ClassifyError categorizes a provider error into a structured Error so
// callers can distinguish auth, endpoint, and transient failures.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	switch {
	case strings.Contains(errStr, "401"), strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "invalid api key"):
		return newError(ErrorTypeAuth, "authentication failed", false, err, statusCode)

	case strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")):
		return newError(ErrorTypeModel, "model not found", false, err, statusCode)

	case strings.Contains(errStr, "404"):
		return newError(ErrorTypeEndpoint, "endpoint not found", false, err, statusCode)

	case strings.Contains(lower, "connection refused"), strings.Contains(lower, "no such host"):
		return newError(ErrorTypeEndpoint, "connection failed", true, err, statusCode)

	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"),
		strings.Contains(lower, "context canceled"):
		return newError(ErrorTypeEndpoint, "request timeout", true, err, statusCode)

	case strings.Contains(errStr, "429"), strings.Contains(lower, "rate limit"):
		return newError(ErrorTypeUnknown, "rate limited", true, err, statusCode)

	case strings.Contains(errStr, "500"), strings.Contains(errStr, "502"),
		strings.Contains(errStr, "503"), strings.Contains(errStr, "504"):
		return newError(ErrorTypeEndpoint, "server error", true, err, statusCode)
	}

	return newError(ErrorTypeUnknown, "llm error", false, err, statusCode)
}
