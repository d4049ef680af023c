package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the analyst engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database password, AI API key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL, holds the EV registration data)
	Database DatabaseConfig `yaml:"database"`

	// AI model configuration
	AI AIConfig `yaml:"ai"`

	// Analyst pipeline tuning
	Analyst AnalystConfig `yaml:"analyst"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"evinsights"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"ev_registrations"`
	Schema         string `yaml:"schema" env:"PGSCHEMA" env-default:"public"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`

	// QueryTimeoutSeconds bounds every statement the engine sends, including
	// generated ones. A timed-out statement is treated like any other failure.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" env:"PGQUERY_TIMEOUT_SECONDS" env-default:"30"`

	// MigrationsPath is the directory containing engine schema migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// AIConfig holds language-model provider configuration.
// Provider "openai" talks to any OpenAI-compatible endpoint (OpenAI, Groq,
// vLLM, ...). Provider "anthropic" uses the Anthropic Messages API.
type AIConfig struct {
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML

	// RequestTimeoutSeconds bounds every model call. A timed-out call is
	// treated identically to any other failure of that step.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"AI_REQUEST_TIMEOUT_SECONDS" env-default:"60"`
}

// AnalystConfig tunes the NL-to-SQL pipeline.
type AnalystConfig struct {
	// AnswerRowLimit caps how many result rows are embedded in the
	// answer-synthesis prompt.
	AnswerRowLimit int `yaml:"answer_row_limit" env:"ANALYST_ANSWER_ROW_LIMIT" env-default:"10"`

	// MaxQuestionLength rejects oversized questions before any model call.
	MaxQuestionLength int `yaml:"max_question_length" env:"ANALYST_MAX_QUESTION_LENGTH" env-default:"2000"`

	// HistoryLimit is the default page size for the history endpoint.
	HistoryLimit int `yaml:"history_limit" env:"ANALYST_HISTORY_LIMIT" env-default:"50"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants that cleanenv cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported AI provider %q (expected openai or anthropic)", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model is required")
	}
	if c.AI.Provider == "openai" && c.AI.Endpoint == "" {
		return fmt.Errorf("AI endpoint is required for the openai provider")
	}
	if c.Analyst.AnswerRowLimit <= 0 {
		return fmt.Errorf("answer_row_limit must be positive")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// QueryTimeout returns the per-statement timeout as a duration.
func (c *DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-model-call timeout as a duration.
func (c *AIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
