// Package llm provides language-model client functionality for the
// classification, SQL-generation, and answer-synthesis steps.
package llm

import (
	"context"
)

// Client is the interface the analyst pipeline depends on.
// Use it for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion for a prompt.
	// systemMessage may be empty. maxTokens bounds the output length.
	GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure both providers implement Client at compile time.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
)
