package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Dataset sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// DatasetConfig says where the session's table comes from.
type DatasetConfig struct {
	Source    string         `mapstructure:"source"`
	Path      string         `mapstructure:"path"`
	Encoding  string         `mapstructure:"encoding"`
	Delimiter string         `mapstructure:"delimiter"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
}

// DelimiterRune returns the first rune of Delimiter, or 0 for the default.
func (c DatasetConfig) DelimiterRune() rune {
	if c.Delimiter == `\t` {
		return '\t'
	}
	for _, r := range c.Delimiter {
		return r
	}
	return 0
}

// PostgresConfig reads the dataset from one table.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	Schema  string `mapstructure:"schema"`
	Table   string `mapstructure:"table"`
	OrderBy string `mapstructure:"order_by"` // column giving the natural row order
	Limit   int    `mapstructure:"limit"`    // 0 = whole table

	SSH SSHConfig `mapstructure:"ssh"`
}

// SSHConfig holds SSH tunnel settings.
type SSHConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	KeyPath       string `mapstructure:"key_path"`
	KeyPassphrase string `mapstructure:"key_passphrase"`
	KnownHosts    string `mapstructure:"known_hosts"` // empty = do not verify the host key
}

// DSN builds a pgx-compatible keyword/value connection string.
// When an SSH tunnel is active, the caller overrides Host/Port with the
// local tunnel endpoint.
func (c PostgresConfig) DSN() string {
	parts := []string{
		"host=" + dsnValue(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"user=" + dsnValue(c.User),
		"dbname=" + dsnValue(c.Database),
		"sslmode=" + dsnValue(c.SSLMode),
	}
	if c.Password != "" {
		parts = append(parts, "password="+dsnValue(c.Password))
	}
	return strings.Join(parts, " ")
}

// dsnValue quotes a value when libpq keyword/value syntax requires it.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (c DatasetConfig) validate() []string {
	var warnings []string
	switch c.Source {
	case SourceCSV, "":
		if c.Path == "" {
			warnings = append(warnings, "dataset.path is empty")
		}
	case SourcePostgres:
		if c.Postgres.Table == "" {
			warnings = append(warnings, "dataset.postgres.table is empty")
		}
		if c.Postgres.Limit < 0 {
			warnings = append(warnings, fmt.Sprintf("dataset.postgres.limit %d is negative", c.Postgres.Limit))
		}
		if c.Postgres.SSH.Enabled && c.Postgres.SSH.KeyPath == "" {
			warnings = append(warnings, "dataset.postgres.ssh is enabled but key_path is empty")
		}
		if c.Postgres.SSH.Enabled && c.Postgres.SSH.KnownHosts == "" {
			warnings = append(warnings, "dataset.postgres.ssh.known_hosts is empty, the host key will not be verified")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unknown dataset.source %q (want csv or postgres)", c.Source))
	}
	return warnings
}
