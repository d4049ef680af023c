package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/apperrors"
	"github.com/evinsights/analyst-engine/pkg/datasource"
	"github.com/evinsights/analyst-engine/pkg/models"
	"github.com/evinsights/analyst-engine/pkg/sql"
)

// SchemaSource provides the schema description embedded in generation prompts.
type SchemaSource interface {
	Describe(ctx context.Context) (*datasource.SchemaDescription, error)
}

// QueryRunner executes generated statements and reports database liveness.
type QueryRunner interface {
	Execute(ctx context.Context, statement string) *datasource.ExecutionResult
	EnsureLive(ctx context.Context) error
}

// HistoryRecorder persists completed turns. Recording is best effort; a
// recording failure never fails the request.
type HistoryRecorder interface {
	Record(ctx context.Context, turn *models.AnalystTurn) error
}

// Service orchestrates the full pipeline for one question at a time.
type Service struct {
	classifier  *Classifier
	generator   *Generator
	synthesizer *Synthesizer
	schema      SchemaSource
	runner      QueryRunner
	history     HistoryRecorder
	maxQuestion int
	logger      *zap.Logger
}

// NewService wires the pipeline stages together. history may be nil to
// disable persistence.
func NewService(
	classifier *Classifier,
	generator *Generator,
	synthesizer *Synthesizer,
	schema SchemaSource,
	runner QueryRunner,
	history HistoryRecorder,
	maxQuestionLength int,
	logger *zap.Logger,
) *Service {
	if maxQuestionLength <= 0 {
		maxQuestionLength = 2000
	}
	return &Service{
		classifier:  classifier,
		generator:   generator,
		synthesizer: synthesizer,
		schema:      schema,
		runner:      runner,
		history:     history,
		maxQuestion: maxQuestionLength,
		logger:      logger.Named("analyst"),
	}
}

// Ask runs one question through the pipeline. conv may be nil; when present
// it supplies prior exchanges to general synthesis and receives this turn on
// success.
//
// Terminal failures map onto the sentinel errors in pkg/apperrors; a database
// rejection of generated SQL surfaces as *apperrors.QueryExecutionError.
func (s *Service) Ask(ctx context.Context, question string, conv *Conversation) (*Response, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}
	if len(question) > s.maxQuestion {
		return nil, fmt.Errorf("%w: question exceeds %d characters", apperrors.ErrQuestionRejected, s.maxQuestion)
	}
	if check := sql.CheckInput(question); check != nil {
		s.logger.Warn("question screened out",
			zap.String("fingerprint", check.Fingerprint))
		return nil, fmt.Errorf("%w: input resembles a SQL injection payload", apperrors.ErrQuestionRejected)
	}

	// The connection must be proven live before any model spend.
	if err := s.runner.EnsureLive(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnectivity, err)
	}

	classification := s.classifier.Classify(ctx, question)

	var resp *Response
	var err error
	switch classification.Type {
	case KindDataQuery:
		resp, err = s.askData(ctx, question)
	case KindHybrid:
		resp, err = s.askHybrid(ctx, question, conv)
	default:
		resp, err = s.askGeneral(ctx, question, conv)
	}
	if err != nil {
		return nil, err
	}

	if conv != nil {
		conv.Append(question, resp.Answer)
	}
	s.record(ctx, resp, "")
	return resp, nil
}

func (s *Service) askGeneral(ctx context.Context, question string, conv *Conversation) (*Response, error) {
	answer, err := s.synthesizer.General(ctx, question, nil, conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSynthesis, err)
	}
	return &Response{Question: question, Kind: KindGeneral, Answer: answer}, nil
}

func (s *Service) askData(ctx context.Context, question string) (*Response, error) {
	statement, err := s.generateStatement(ctx, question)
	if err != nil {
		if errors.Is(err, ErrNoSQLApplicable) || errors.Is(err, sql.ErrNoStatement) {
			return nil, apperrors.ErrNoQueryFormed
		}
		return nil, err
	}

	result := s.runner.Execute(ctx, statement)
	if result.Failed() {
		execErr := &apperrors.QueryExecutionError{SQL: statement, Message: result.Error}
		s.record(ctx, &Response{Question: question, Kind: KindDataQuery, SQL: statement}, result.Error)
		return nil, execErr
	}

	answer, err := s.synthesizer.Grounded(ctx, question, result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSynthesis, err)
	}

	return &Response{
		Question: question,
		Kind:     KindDataQuery,
		SQL:      statement,
		Result:   result,
		Answer:   answer,
	}, nil
}

// askHybrid attempts one data lookup and degrades to a purely general answer
// when any step of the lookup fails. Only synthesis failure is terminal.
func (s *Service) askHybrid(ctx context.Context, question string, conv *Conversation) (*Response, error) {
	var statement string
	var result *datasource.ExecutionResult

	stmt, err := s.generateStatement(ctx, question)
	if err == nil {
		if r := s.runner.Execute(ctx, stmt); !r.Failed() {
			statement = stmt
			result = r
		} else {
			s.logger.Debug("hybrid lookup failed, answering without data",
				zap.String("error", r.Error))
		}
	} else {
		s.logger.Debug("hybrid generation failed, answering without data", zap.Error(err))
	}

	answer, err := s.synthesizer.General(ctx, question, result, conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSynthesis, err)
	}

	return &Response{
		Question: question,
		Kind:     KindHybrid,
		SQL:      statement,
		Result:   result,
		Answer:   answer,
	}, nil
}

func (s *Service) generateStatement(ctx context.Context, question string) (string, error) {
	desc, err := s.schema.Describe(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrConnectivity, err)
	}
	return s.generator.Generate(ctx, question, desc.Text())
}

func (s *Service) record(ctx context.Context, resp *Response, execError string) {
	if s.history == nil {
		return
	}
	turn := &models.AnalystTurn{
		ID:        uuid.New(),
		Question:  resp.Question,
		Kind:      string(resp.Kind),
		SQL:       resp.SQL,
		ExecError: execError,
		Answer:    resp.Answer,
	}
	if err := s.history.Record(ctx, turn); err != nil {
		s.logger.Warn("failed to record analyst turn", zap.Error(err))
	}
}
