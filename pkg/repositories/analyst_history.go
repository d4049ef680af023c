// Package repositories provides data access for engine-owned tables.
package repositories

import (
	"context"
	"fmt"

	"github.com/evinsights/analyst-engine/pkg/database"
	"github.com/evinsights/analyst-engine/pkg/models"
)

// AnalystHistoryRepository persists analyst turns.
type AnalystHistoryRepository struct {
	db *database.DB
}

// NewAnalystHistoryRepository creates a new repository.
func NewAnalystHistoryRepository(db *database.DB) *AnalystHistoryRepository {
	return &AnalystHistoryRepository{db: db}
}

// Record inserts one completed turn.
func (r *AnalystHistoryRepository) Record(ctx context.Context, turn *models.AnalystTurn) error {
	query := `
		INSERT INTO analyst_history (id, question, kind, sql_text, exec_error, answer)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		turn.ID, turn.Question, turn.Kind, turn.SQL, turn.ExecError, turn.Answer)
	if err != nil {
		return fmt.Errorf("failed to record analyst turn: %w", err)
	}
	return nil
}

// ListRecent returns up to limit turns, newest first.
func (r *AnalystHistoryRepository) ListRecent(ctx context.Context, limit int) ([]*models.AnalystTurn, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, question, kind, sql_text, exec_error, answer, created_at
		FROM analyst_history
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyst history: %w", err)
	}
	defer rows.Close()

	var turns []*models.AnalystTurn
	for rows.Next() {
		turn := &models.AnalystTurn{}
		if err := rows.Scan(&turn.ID, &turn.Question, &turn.Kind, &turn.SQL,
			&turn.ExecError, &turn.Answer, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analyst turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analyst history: %w", err)
	}

	return turns, nil
}

// Clear deletes all recorded turns.
func (r *AnalystHistoryRepository) Clear(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM analyst_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear analyst history: %w", err)
	}
	return tag.RowsAffected(), nil
}
