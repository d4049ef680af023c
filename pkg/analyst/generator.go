package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/llm"
	"github.com/evinsights/analyst-engine/pkg/sql"
)

// ErrNoSQLApplicable indicates the model judged the question unanswerable from
// the database and emitted the sentinel instead of a statement.
var ErrNoSQLApplicable = errors.New("no database query applies to this question")

// Generator turns a question plus schema context into one clean SQL statement.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		logger: logger.Named("generator"),
	}
}

// Generate produces a sanitized statement for the question, or
// ErrNoSQLApplicable when the model emits the no-query sentinel, or
// sql.ErrNoStatement when the output contains nothing extractable.
func (g *Generator) Generate(ctx context.Context, question, schemaText string) (string, error) {
	raw, err := g.client.GenerateResponse(ctx, generationPrompt(question, schemaText), "", generateTemperature, generateMaxTokens)
	if err != nil {
		return "", fmt.Errorf("sql generation call failed: %w", err)
	}

	if strings.Contains(raw, NoSQLSentinel) {
		g.logger.Debug("model declined to generate sql")
		return "", ErrNoSQLApplicable
	}

	statement, err := sql.ExtractStatement(raw)
	if err != nil {
		g.logger.Warn("no statement extractable from model output", zap.Error(err))
		return "", err
	}

	g.logger.Debug("sql generated", zap.String("sql", statement))
	return statement, nil
}
