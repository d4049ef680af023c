package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/analyst"
	"github.com/evinsights/analyst-engine/pkg/datasource"
	"github.com/evinsights/analyst-engine/pkg/llm"
)

type fakeSchema struct{}

func (fakeSchema) Describe(ctx context.Context) (*datasource.SchemaDescription, error) {
	return &datasource.SchemaDescription{
		Schema: "public",
		Tables: []datasource.TableDescription{
			{Name: "vehicle", Columns: []datasource.ColumnDescription{{Name: "vin", DataType: "text"}}},
		},
	}, nil
}

type fakeRunner struct {
	result  *datasource.ExecutionResult
	liveErr error
}

func (f *fakeRunner) Execute(ctx context.Context, statement string) *datasource.ExecutionResult {
	if f.result != nil {
		return f.result
	}
	return &datasource.ExecutionResult{SQL: statement}
}

func (f *fakeRunner) EnsureLive(ctx context.Context) error {
	return f.liveErr
}

func newTestHandler(client llm.Client, runner analyst.QueryRunner) *AnalystHandler {
	logger := zap.NewNop()
	service := analyst.NewService(
		analyst.NewClassifier(client, logger),
		analyst.NewGenerator(client, logger),
		analyst.NewSynthesizer(client, 10, logger),
		fakeSchema{},
		runner,
		nil,
		2000,
		logger,
	)
	return NewAnalystHandler(service, nil, 50, logger)
}

func askClient(classification, generation, synthesis string) *llm.MockClient {
	client := llm.NewMockClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64, maxTokens int) (string, error) {
		switch {
		case strings.Contains(prompt, "Classify this question"):
			return classification, nil
		case strings.Contains(prompt, "PostgreSQL SQL generator"):
			return generation, nil
		default:
			return synthesis, nil
		}
	}
	return client
}

func doAsk(t *testing.T, h *AnalystHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Ask(rec, req)
	return rec
}

func TestAsk_Success(t *testing.T) {
	client := askClient(
		`{"type": "DATA_QUERY", "needs_database": true, "reasoning": "count"}`,
		"SELECT COUNT(*) FROM vehicle",
		"There are 150,000 registered electric vehicles.",
	)
	runner := &fakeRunner{result: &datasource.ExecutionResult{
		Columns: []string{"count"},
		Rows:    [][]any{{int64(150000)}},
	}}

	rec := doAsk(t, newTestHandler(client, runner), `{"question": "How many EVs are registered?"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyst.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, analyst.KindDataQuery, resp.Kind)
	assert.Equal(t, "SELECT COUNT(*) FROM vehicle", resp.SQL)
	assert.Contains(t, resp.Answer, "150,000")
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		client     *llm.MockClient
		runner     *fakeRunner
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed body",
			body:       `{"question": `,
			client:     llm.NewMockClient(),
			runner:     &fakeRunner{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "empty question",
			body:       `{"question": ""}`,
			client:     llm.NewMockClient(),
			runner:     &fakeRunner{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "empty_question",
		},
		{
			name:       "injection payload",
			body:       `{"question": "' OR 1=1 --"}`,
			client:     llm.NewMockClient(),
			runner:     &fakeRunner{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "question_rejected",
		},
		{
			name: "no query formed",
			body: `{"question": "How many unicorns?"}`,
			client: askClient(
				`{"type": "DATA_QUERY", "needs_database": true, "reasoning": "count"}`,
				"NO_SQL_NEEDED",
				"",
			),
			runner:     &fakeRunner{},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "no_query_formed",
		},
		{
			name: "query failed",
			body: `{"question": "Show me nope"}`,
			client: askClient(
				`{"type": "DATA_QUERY", "needs_database": true, "reasoning": "count"}`,
				"SELECT nope FROM vehicle",
				"",
			),
			runner:     &fakeRunner{result: &datasource.ExecutionResult{Error: `column "nope" does not exist`}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "query_failed",
		},
		{
			name:       "database unavailable",
			body:       `{"question": "How many EVs?"}`,
			client:     llm.NewMockClient(),
			runner:     &fakeRunner{liveErr: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "database_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAsk(t, newTestHandler(tt.client, tt.runner), tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestAsk_SynthesisFailure(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64, maxTokens int) (string, error) {
		if strings.Contains(prompt, "Classify this question") {
			return `{"type": "GENERAL", "needs_database": false, "reasoning": "background"}`, nil
		}
		return "", errors.New("503 Service Unavailable")
	}

	rec := doAsk(t, newTestHandler(client, &fakeRunner{}), `{"question": "What is an EV?"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "synthesis_failed", body["error"])
}
