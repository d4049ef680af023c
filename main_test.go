package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evinsights/analyst-engine/pkg/config"
)

func TestAskDeadline_CoversWorstCaseTurn(t *testing.T) {
	cfg := &config.Config{
		AI:       config.AIConfig{RequestTimeoutSeconds: 60},
		Database: config.DatabaseConfig{QueryTimeoutSeconds: 30},
	}

	deadline := askDeadline(cfg)

	worstCase := 3*cfg.AI.RequestTimeout() + cfg.Database.QueryTimeout()
	assert.Greater(t, deadline, worstCase)
	assert.Equal(t, 225*time.Second, deadline)
}
