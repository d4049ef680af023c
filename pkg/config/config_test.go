package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "openai",
			Endpoint: "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
		},
		Analyst: AnalystConfig{
			AnswerRowLimit:    10,
			MaxQuestionLength: 2000,
			HistoryLimit:      50,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid openai config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid anthropic config without endpoint",
			mutate: func(c *Config) {
				c.AI.Provider = "anthropic"
				c.AI.Endpoint = ""
			},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.AI.Provider = "groq" },
			wantErr: true,
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.AI.Model = "" },
			wantErr: true,
		},
		{
			name: "openai without endpoint",
			mutate: func(c *Config) {
				c.AI.Endpoint = ""
			},
			wantErr: true,
		},
		{
			name:    "non-positive row limit",
			mutate:  func(c *Config) { c.Analyst.AnswerRowLimit = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "analyst",
		Password: "secret",
		Database: "ev_registrations",
		SSLMode:  "require",
	}

	got := db.ConnectionString()
	assert.Equal(t, "host=db.internal port=5433 user=analyst password=secret dbname=ev_registrations sslmode=require", got)
}

func TestTimeouts(t *testing.T) {
	db := DatabaseConfig{QueryTimeoutSeconds: 30}
	assert.Equal(t, 30*time.Second, db.QueryTimeout())

	ai := AIConfig{RequestTimeoutSeconds: 60}
	assert.Equal(t, time.Minute, ai.RequestTimeout())
}
