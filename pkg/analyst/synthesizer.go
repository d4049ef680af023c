package analyst

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/datasource"
	"github.com/evinsights/analyst-engine/pkg/llm"
)

// Synthesizer turns pipeline outcomes into conversational answers.
type Synthesizer struct {
	client   llm.Client
	rowLimit int
	logger   *zap.Logger
}

// NewSynthesizer creates a Synthesizer. rowLimit caps how many result rows are
// embedded in a prompt.
func NewSynthesizer(client llm.Client, rowLimit int, logger *zap.Logger) *Synthesizer {
	if rowLimit <= 0 {
		rowLimit = 10
	}
	return &Synthesizer{
		client:   client,
		rowLimit: rowLimit,
		logger:   logger.Named("synthesizer"),
	}
}

// Grounded answers a data question strictly from query results.
func (s *Synthesizer) Grounded(ctx context.Context, question string, result *datasource.ExecutionResult) (string, error) {
	rowView := formatRowView(result, s.rowLimit)

	answer, err := s.client.GenerateResponse(ctx, groundedPrompt(question, rowView), "", groundedTemperature, groundedMaxTokens)
	if err != nil {
		return "", fmt.Errorf("grounded synthesis failed: %w", err)
	}
	return answer, nil
}

// General answers from domain knowledge. Query results, when present, are
// blended into the prompt as supporting context; conv supplies prior
// exchanges and may be nil.
func (s *Synthesizer) General(ctx context.Context, question string, result *datasource.ExecutionResult, conv *Conversation) (string, error) {
	rowView := ""
	if result != nil && len(result.Rows) > 0 {
		rowView = formatRowView(result, s.rowLimit)
	}

	history := ""
	if conv != nil {
		history = conv.Render()
	}

	answer, err := s.client.GenerateResponse(ctx, generalUserMessage(question, rowView, history), generalSystemPrompt, generalTemperature, generalMaxTokens)
	if err != nil {
		return "", fmt.Errorf("general synthesis failed: %w", err)
	}

	s.logger.Debug("answer synthesized", zap.Int("length", len(answer)))
	return answer, nil
}
