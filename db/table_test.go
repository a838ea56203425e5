package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiData/config"
)

func TestSelectQuery(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PostgresConfig
		want string
	}{
		{"default schema", config.PostgresConfig{Table: "sales"}, `SELECT * FROM "public"."sales"`},
		{"ordered and limited", config.PostgresConfig{Schema: "bi", Table: "monday", OrderBy: "id", Limit: 500},
			`SELECT * FROM "bi"."monday" ORDER BY "id" LIMIT 500`},
		{"quoted identifiers", config.PostgresConfig{Table: `x"; DROP TABLE y; --`},
			`SELECT * FROM "public"."x""; DROP TABLE y; --"`},
		{"negative limit ignored", config.PostgresConfig{Table: "t", Limit: -1}, `SELECT * FROM "public"."t"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectQuery(tt.cfg))
		})
	}
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "postgres:public.sales", SourceName(config.PostgresConfig{Table: "sales"}))
	assert.Equal(t, "postgres:bi.sales", SourceName(config.PostgresConfig{Schema: "bi", Table: "sales"}))
}

func TestFormatValue(t *testing.T) {
	var num pgtype.Numeric
	require.NoError(t, num.Scan("12.5"))

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, ""},
		{"text", "Alice", "Alice"},
		{"bytes", []byte("raw"), "raw"},
		{"int", int64(42), "42"},
		{"float", 2.5, "2.5"},
		{"whole float", float64(100), "100"},
		{"bool", true, "true"},
		{"date", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "2024-03-04"},
		{"timestamp", time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC), "2024-03-04 05:06:07"},
		{"numeric", num, "12.5"},
		{"uuid", [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0},
			"12345678-9abc-def0-1234-56789abcdef0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestFormatRowCount(t *testing.T) {
	assert.Equal(t, "42", FormatRowCount(42))
	assert.Equal(t, "999", FormatRowCount(999))
	assert.Equal(t, "1k", FormatRowCount(1000))
	assert.Equal(t, "999k", FormatRowCount(999499))
	assert.Equal(t, "1M", FormatRowCount(999500))
	assert.Equal(t, "10M", FormatRowCount(10_000_000))
}

func TestLoadTable_NoTable(t *testing.T) {
	_, err := LoadTable(t.Context(), config.PostgresConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table configured")
}
