package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient provides access to the Anthropic Messages API behind the
// same Client interface as the OpenAI-compatible client.
type AnthropicClient struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewAnthropicClient creates a new Anthropic LLM client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
	}

	return &AnthropicClient{
		client:  anthropic.NewClient(cfg.APIKey, opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("llm"),
	}, nil
}

// GenerateResponse generates a chat completion response.
func (c *AnthropicClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if maxTokens <= 0 {
		maxTokens = 1024
	}
	temp := float32(temperature)

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("temperature", temperature))

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   maxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}
