package analyst

import (
	"context"

	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/llm"
)

// Classifier routes a question into one of the three handling categories.
type Classifier struct {
	client llm.Client
	logger *zap.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier(client llm.Client, logger *zap.Logger) *Classifier {
	return &Classifier{
		client: client,
		logger: logger.Named("classifier"),
	}
}

// Classify determines how a question should be handled. It never returns an
// error: any model or parse failure falls back to GENERAL with
// needs_database=false, trading precision for availability.
func (c *Classifier) Classify(ctx context.Context, question string) Classification {
	fallback := Classification{
		Type:          KindGeneral,
		NeedsDatabase: false,
		Reasoning:     "Classification uncertain, defaulting to general",
	}

	raw, err := c.client.GenerateResponse(ctx, classificationPrompt(question), "", classifyTemperature, classifyMaxTokens)
	if err != nil {
		c.logger.Warn("classification call failed, defaulting to general", zap.Error(err))
		return fallback
	}

	classification, err := llm.ParseJSONResponse[Classification](raw)
	if err != nil {
		c.logger.Warn("classification response unparseable, defaulting to general",
			zap.Error(err))
		return fallback
	}

	switch classification.Type {
	case KindGeneral, KindDataQuery, KindHybrid:
	default:
		c.logger.Warn("unknown classification type, defaulting to general",
			zap.String("type", string(classification.Type)))
		return fallback
	}

	c.logger.Debug("question classified",
		zap.String("type", string(classification.Type)),
		zap.Bool("needs_database", classification.NeedsDatabase),
		zap.String("reasoning", classification.Reasoning))
	return classification
}
