package datasource

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// normalizeRow converts driver-specific cell types into plain Go values.
// pgx decodes numeric columns (every AVG/SUM result) as pgtype.Numeric, which
// renders as struct fields instead of a number when formatted; answer
// synthesis needs the plain value.
func normalizeRow(row []any) []any {
	for i, v := range row {
		row[i] = normalizeValue(v)
	}
	return row
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		if f, err := val.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		// Values float64 cannot represent fall back to their text form.
		if dv, err := val.Value(); err == nil {
			return dv
		}
	}
	return v
}
