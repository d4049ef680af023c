package datasource

import (
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRow_Numeric(t *testing.T) {
	// 2026 * 10^-1 is how the driver decodes "202.6".
	avg := pgtype.Numeric{Int: big.NewInt(2026), Exp: -1, Valid: true}

	row := normalizeRow([]any{avg, int64(5), "TESLA"})

	f, ok := row[0].(float64)
	require.True(t, ok, "expected numeric cell to become float64, got %T", row[0])
	assert.InDelta(t, 202.6, f, 1e-9)
	assert.Equal(t, int64(5), row[1])
	assert.Equal(t, "TESLA", row[2])
}

func TestNormalizeRow_NumericFormatsAsNumber(t *testing.T) {
	avg := pgtype.Numeric{Int: big.NewInt(2026), Exp: -1, Valid: true}

	row := normalizeRow([]any{avg})

	rendered := fmt.Sprintf("%v", row[0])
	assert.Equal(t, "202.6", rendered)
	assert.NotContains(t, rendered, "{")
}

func TestNormalizeRow_NaNBecomesFloat(t *testing.T) {
	nan := pgtype.Numeric{NaN: true, Valid: true}

	row := normalizeRow([]any{nan})

	f, ok := row[0].(float64)
	require.True(t, ok, "expected NaN numeric to become float64, got %T", row[0])
	assert.True(t, math.IsNaN(f))
}

func TestNormalizeRow_PlainValuesUntouched(t *testing.T) {
	row := normalizeRow([]any{int64(150000), "BEV", 84.0, nil})

	assert.Equal(t, []any{int64(150000), "BEV", 84.0, nil}, row)
}
