// Package config defines the application configuration structures.
//
// Settings come from, in increasing precedence: built-in defaults,
// ~/.paidata/config.json (or --config), PAIDATA_* environment variables
// and command-line flags. Kept separate from cmd so other packages can
// depend on config without importing Cobra.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	AI      AIConfig      `mapstructure:"ai"`
	Context ContextConfig `mapstructure:"context"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Log     LogConfig     `mapstructure:"log"`
}

// ContextConfig selects how much of the dataset goes into each prompt.
type ContextConfig struct {
	Policy string `mapstructure:"policy"` // "full", "rows:N" or "chars:N"
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Dir returns ~/.paidata, or ".paidata" when the home directory is unknown.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".paidata"
	}
	return filepath.Join(homeDir, ".paidata")
}

// DefaultPath is where Load looks when no --config is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.json")
}

func setDefaults(v *viper.Viper) {
	ai := DefaultAIConfig()
	v.SetDefault("ai.provider", ai.Provider)
	v.SetDefault("ai.protocol", ai.Protocol)
	v.SetDefault("ai.model", ai.Model)
	v.SetDefault("ai.base_url", ai.BaseURL)
	v.SetDefault("ai.credential_env", ai.CredentialEnv)
	v.SetDefault("ai.temperature", ai.Temperature)
	v.SetDefault("ai.max_tokens", ai.MaxTokens)
	v.SetDefault("ai.timeout", ai.Timeout.String())
	v.SetDefault("ai.system_prompt", "")
	v.SetDefault("ai.user_template", "")

	v.SetDefault("context.policy", "chars:12000")

	v.SetDefault("dataset.source", SourceCSV)
	v.SetDefault("dataset.path", "output_Monday_BI_data.csv")
	v.SetDefault("dataset.encoding", "ISO-8859-1")
	v.SetDefault("dataset.delimiter", ",")
	v.SetDefault("dataset.postgres.host", "localhost")
	v.SetDefault("dataset.postgres.port", 5432)
	v.SetDefault("dataset.postgres.user", "postgres")
	v.SetDefault("dataset.postgres.password", "")
	v.SetDefault("dataset.postgres.database", "postgres")
	v.SetDefault("dataset.postgres.sslmode", "disable")
	v.SetDefault("dataset.postgres.schema", "public")
	v.SetDefault("dataset.postgres.table", "")
	v.SetDefault("dataset.postgres.order_by", "")
	v.SetDefault("dataset.postgres.limit", 0)
	v.SetDefault("dataset.postgres.ssh.enabled", false)
	v.SetDefault("dataset.postgres.ssh.host", "")
	v.SetDefault("dataset.postgres.ssh.port", 22)
	v.SetDefault("dataset.postgres.ssh.user", "")
	v.SetDefault("dataset.postgres.ssh.key_path", "")
	v.SetDefault("dataset.postgres.ssh.key_passphrase", "")
	v.SetDefault("dataset.postgres.ssh.known_hosts", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(Dir(), "logs", "app.log"))
}

// Load reads configuration from file, environment and the bound flags.
// flags maps config keys (e.g. "dataset.path") to command-line flags.
// A missing file is only an error when path was given explicitly.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetEnvPrefix("PAIDATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not unmarshal: %v", err))
	}
	return &cfg
}

// WriteDefault writes the built-in defaults to path, creating its directory.
// An existing file is left untouched.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	v := viper.New()
	setDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Chmod(path, 0600)
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	warnings := c.AI.validate()
	warnings = append(warnings, c.Dataset.validate()...)
	if c.Context.Policy == "" {
		warnings = append(warnings, "context.policy is empty, the whole dataset will be sent")
	}
	return warnings
}
