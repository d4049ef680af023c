package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/logging"
	"github.com/evinsights/analyst-engine/pkg/sql"
)

// ExecutionResult is the outcome of running one generated statement. Exactly
// one of (Columns, Rows) or Error is populated.
type ExecutionResult struct {
	SQL     string   `json:"-"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Failed reports whether the statement ran to completion.
func (r *ExecutionResult) Failed() bool {
	return r.Error != ""
}

// RowCount returns the number of result rows.
func (r *ExecutionResult) RowCount() int {
	return len(r.Rows)
}

// Executor runs read-only statements against the analytics database.
type Executor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecutor creates an Executor with a per-statement timeout.
func NewExecutor(pool *pgxpool.Pool, timeout time.Duration, logger *zap.Logger) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{
		pool:    pool,
		timeout: timeout,
		logger:  logger.Named("executor"),
	}
}

// Execute runs a single statement in its own transaction and captures the
// outcome as a value. Database failures are reported through the result's
// Error field, never as a returned error, so a failed query can still feed
// answer synthesis.
func (e *Executor) Execute(ctx context.Context, statement string) *ExecutionResult {
	result := &ExecutionResult{SQL: statement}

	if !sql.IsReadOnly(statement) {
		result.Error = "only read-only queries are allowed"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to acquire connection: %v", err)
		return result
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to begin transaction: %v", err)
		return result
	}

	rows, err := tx.Query(ctx, statement)
	if err != nil {
		_ = tx.Rollback(ctx)
		result.Error = err.Error()
		e.logger.Warn("query failed",
			zap.String("sql", logging.SanitizeQuery(statement)),
			zap.String("error", logging.SanitizeError(err)))
		return result
	}

	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			rows.Close()
			_ = tx.Rollback(ctx)
			result.Columns = nil
			result.Rows = nil
			result.Error = fmt.Sprintf("failed to read row: %v", err)
			return result
		}
		result.Rows = append(result.Rows, normalizeRow(values))
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		_ = tx.Rollback(ctx)
		result.Columns = nil
		result.Rows = nil
		result.Error = err.Error()
		return result
	}

	// Commit even though the statement is read-only so the session never
	// accumulates an open transaction.
	if err := tx.Commit(ctx); err != nil {
		result.Columns = nil
		result.Rows = nil
		result.Error = fmt.Sprintf("failed to commit: %v", err)
		return result
	}

	e.logger.Debug("query executed",
		zap.Int("rows", result.RowCount()),
		zap.Int("columns", len(result.Columns)))
	return result
}

// EnsureLive probes the connection with SELECT 1. If the probe fails it
// issues a single ROLLBACK to clear a possibly aborted session state and
// probes again. A second failure means the database is unreachable.
func (e *Executor) EnsureLive(ctx context.Context) error {
	if err := e.probe(ctx); err == nil {
		return nil
	}

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if _, err := conn.Exec(ctx, "ROLLBACK"); err != nil {
		e.logger.Debug("recovery rollback failed", zap.Error(err))
	}
	conn.Release()

	if err := e.probe(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	e.logger.Info("database connection recovered after rollback")
	return nil
}

func (e *Executor) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var one int
	if err := e.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return err
	}
	return nil
}
