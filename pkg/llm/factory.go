package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/config"
)

// NewClientFromConfig creates a provider-specific Client from configuration.
func NewClientFromConfig(cfg *config.AIConfig, logger *zap.Logger) (Client, error) {
	clientCfg := &Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.RequestTimeout(),
	}

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIClient(clientCfg, logger)
	case "anthropic":
		return NewAnthropicClient(clientCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}
