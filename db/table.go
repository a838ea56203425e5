package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v5"

	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/dataset"
)

// TableInfo describes one table in a schema.
type TableInfo struct {
	Schema   string
	Name     string
	RowCount int64 // estimated row count (from pg_class.reltuples)
}

// SourceName identifies the table in messages, e.g. "postgres:public.sales".
func SourceName(cfg config.PostgresConfig) string {
	return "postgres:" + schemaOf(cfg) + "." + cfg.Table
}

func schemaOf(cfg config.PostgresConfig) string {
	if cfg.Schema == "" {
		return "public"
	}
	return cfg.Schema
}

// SelectQuery builds the statement that reads the dataset table.
// Identifiers are quoted, so the table name cannot inject SQL.
func SelectQuery(cfg config.PostgresConfig) string {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(pgx.Identifier{schemaOf(cfg), cfg.Table}.Sanitize())
	if cfg.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(pgx.Identifier{cfg.OrderBy}.Sanitize())
	}
	if cfg.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(cfg.Limit))
	}
	return sb.String()
}

// LoadTable connects, reads the configured table into a Dataset and
// disconnects. Every failure is a *dataset.LoadError.
func LoadTable(ctx context.Context, cfg config.PostgresConfig) (*dataset.Dataset, error) {
	source := SourceName(cfg)
	if cfg.Table == "" {
		return nil, &dataset.LoadError{Kind: dataset.LoadOther, Source: source, Err: fmt.Errorf("no table configured")}
	}

	d, err := Connect(ctx, cfg)
	if err != nil {
		return nil, &dataset.LoadError{Kind: dataset.LoadOther, Source: source, Err: err}
	}
	defer d.Close()

	ds, err := d.ReadTable(ctx, cfg)
	if err != nil {
		return nil, &dataset.LoadError{Kind: dataset.LoadOther, Source: source, Err: err}
	}
	return ds, nil
}

// ReadTable runs SelectQuery and collects the rows as text.
func (d *DB) ReadTable(ctx context.Context, cfg config.PostgresConfig) (*dataset.Dataset, error) {
	rows, err := d.Pool.Query(ctx, SelectQuery(cfg))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	var data [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dataset.New(SourceName(cfg), columns, data)
}

// FormatValue renders a scanned column value as dataset text.
// NULL becomes the empty string, which the context builder shows as NaN.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case [16]byte:
		// uuid
		return fmt.Sprintf("%x-%x-%x-%x-%x", x[0:4], x[4:6], x[6:8], x[8:10], x[10:16])
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case driver.Valuer:
		// pgtype values (numeric, uuid, intervals) know their text form.
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return FormatValue(dv)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ListTables lists base tables in schema with estimated row counts.
func (d *DB) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	if schema == "" {
		schema = "public"
	}
	query := `
		SELECT t.table_schema, t.table_name,
		       GREATEST(COALESCE(c.reltuples, 0), 0)::bigint
		FROM information_schema.tables t
		LEFT JOIN pg_class c
		  ON c.relname = t.table_name
		  AND c.relnamespace = (SELECT oid FROM pg_namespace WHERE nspname = t.table_schema)
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name`
	rows, err := d.Pool.Query(ctx, query, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowCount); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// FormatRowCount formats a row count for compact display:
//   - under 1000: exact number (e.g. "42", "999")
//   - 1000..999499: Xk (e.g. "1k", "999k")
//   - 999500+: XM (e.g. "1M", "10M")
func FormatRowCount(n int64) string {
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}
	if n < 999500 {
		return fmt.Sprintf("%dk", (n+500)/1000)
	}
	return fmt.Sprintf("%dM", (n+500000)/1000000)
}
