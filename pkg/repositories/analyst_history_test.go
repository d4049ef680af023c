package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evinsights/analyst-engine/pkg/models"
	"github.com/evinsights/analyst-engine/pkg/repositories"
	"github.com/evinsights/analyst-engine/pkg/testhelpers"
)

func TestAnalystHistoryRepository(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()

	repo := repositories.NewAnalystHistoryRepository(db.DB)

	_, err := repo.Clear(ctx)
	require.NoError(t, err)

	turns := []*models.AnalystTurn{
		{
			ID:       uuid.New(),
			Question: "How many EVs are registered?",
			Kind:     "DATA_QUERY",
			SQL:      "SELECT COUNT(*) FROM vehicle",
			Answer:   "There are 5 electric vehicles in the database.",
		},
		{
			ID:        uuid.New(),
			Question:  "Show me nope",
			Kind:      "DATA_QUERY",
			SQL:       "SELECT nope FROM vehicle",
			ExecError: `column "nope" does not exist`,
		},
		{
			ID:       uuid.New(),
			Question: "What is an EV?",
			Kind:     "GENERAL",
			Answer:   "An electric vehicle runs on a battery.",
		},
	}
	for _, turn := range turns {
		require.NoError(t, repo.Record(ctx, turn))
	}

	t.Run("list newest first", func(t *testing.T) {
		listed, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, "What is an EV?", listed[0].Question)
		assert.Equal(t, `column "nope" does not exist`, listed[1].ExecError)
		assert.False(t, listed[0].CreatedAt.IsZero())
	})

	t.Run("limit respected", func(t *testing.T) {
		listed, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		deleted, err := repo.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)

		listed, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}
