package llm

import (
	"context"
)

// MockClient is a configurable mock for testing LLM-backed components.
// Set the function field to control behavior in tests.
type MockClient struct {
	// GenerateResponseFunc is called when GenerateResponse is invoked.
	// If nil, returns an empty string and nil error.
	GenerateResponseFunc func(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	GenerateResponseCalls int
	Prompts               []string
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Model: "mock-model",
	}
}

// GenerateResponse implements Client.
func (m *MockClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error) {
	m.GenerateResponseCalls++
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, systemMessage, temperature, maxTokens)
	}
	return "", nil
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.GenerateResponseCalls = 0
	m.Prompts = nil
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
