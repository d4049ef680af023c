// Package datasource reads schema metadata from the analytics database and
// executes generated SQL against it.
package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ColumnDescription is a single column of an introspected table.
type ColumnDescription struct {
	Name     string
	DataType string
}

// TableDescription is one table with its columns in ordinal order.
type TableDescription struct {
	Name    string
	Columns []ColumnDescription
}

// SchemaDescription is the complete set of tables visible to the analyst in a
// single namespace.
type SchemaDescription struct {
	Schema string
	Tables []TableDescription
}

// Text renders the schema as a compact listing suitable for inclusion in a
// model prompt. Tables appear in alphabetical order, columns in the order the
// database defines them.
func (s *SchemaDescription) Text() string {
	if len(s.Tables) == 0 {
		return ""
	}

	var b strings.Builder
	for i, table := range s.Tables {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(table.Name)
		b.WriteString("(\n")
		for j, col := range table.Columns {
			if j > 0 {
				b.WriteString(",\n")
			}
			b.WriteString("  ")
			b.WriteString(col.Name)
			b.WriteString(" ")
			b.WriteString(col.DataType)
		}
		b.WriteString("\n)")
	}
	return b.String()
}

// Introspector reads table and column metadata from the information schema.
type Introspector struct {
	pool   *pgxpool.Pool
	schema string
	logger *zap.Logger
}

// NewIntrospector creates an Introspector bound to one namespace.
func NewIntrospector(pool *pgxpool.Pool, schema string, logger *zap.Logger) *Introspector {
	return &Introspector{
		pool:   pool,
		schema: schema,
		logger: logger.Named("introspector"),
	}
}

const describeColumnsQuery = `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`

// Describe reads every table in the configured namespace. An empty schema is
// returned as a description with no tables, not an error.
func (in *Introspector) Describe(ctx context.Context) (*SchemaDescription, error) {
	rows, err := in.pool.Query(ctx, describeColumnsQuery, in.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query information schema: %w", err)
	}
	defer rows.Close()

	desc := &SchemaDescription{Schema: in.schema}
	var current *TableDescription

	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}

		if current == nil || current.Name != tableName {
			desc.Tables = append(desc.Tables, TableDescription{Name: tableName})
			current = &desc.Tables[len(desc.Tables)-1]
		}
		current.Columns = append(current.Columns, ColumnDescription{
			Name:     columnName,
			DataType: dataType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read column metadata: %w", err)
	}

	in.logger.Debug("schema introspected",
		zap.String("schema", in.schema),
		zap.Int("tables", len(desc.Tables)))
	return desc, nil
}
