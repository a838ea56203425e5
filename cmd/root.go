// Package cmd contains all Cobra commands for paiData.
//
// Design decision: the root command launches the TUI directly.
// Running `paidata` with no arguments loads the configured dataset,
// asks for the API key if the environment has none, and opens the
// question panel. The subcommands cover scripting and setup.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/tui"
)

var cfgFile string

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"ai.provider":            "provider",
	"ai.protocol":            "protocol",
	"ai.model":               "model",
	"ai.base_url":            "base-url",
	"ai.temperature":         "temperature",
	"ai.max_tokens":          "max-tokens",
	"ai.timeout":             "timeout",
	"context.policy":         "policy",
	"dataset.source":         "source",
	"dataset.path":           "dataset",
	"dataset.encoding":       "encoding",
	"dataset.postgres.table": "table",
	"log.level":              "log-level",
}

var rootCmd = &cobra.Command{
	Use:   "paidata",
	Short: "Ask questions about a dataset with an AI model",
	Long: `paiData loads a tabular dataset and answers natural-language
questions about it using a hosted or local language model:
  • CSV files in any encoding, or a PostgreSQL table (optionally over SSH)
  • OpenAI-compatible, Anthropic, Gemini and Ollama services
  • The API key is read from the environment or typed in, never stored

Run 'paidata' to start the TUI, or 'paidata ask "..."' for a one-shot answer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		applog.Close()
	},
	// Running with no subcommand launches the TUI.
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		applog.Event("APP", "starting TUI (%s, %s)", a.protocol.Name(), a.session.Model)
		err = tui.Start(tui.Deps{
			Config:   a.cfg,
			Session:  a.session,
			Protocol: a.protocol,
			Resolver: a.resolver,
			Logger:   applog.L(),
		})
		applog.Event("APP", "TUI exited")
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.paidata/config.json)")
	pf.String("provider", "", "AI provider: openai, groq, anthropic, gemini, ollama, placeholder")
	pf.String("protocol", "", "wire protocol, overrides the provider default")
	pf.String("model", "", "model name")
	pf.String("base-url", "", "service base URL")
	pf.Float64("temperature", 0, "sampling temperature")
	pf.Int("max-tokens", 0, "maximum answer length in tokens")
	pf.Duration("timeout", 0, "completion request timeout")
	pf.String("policy", "", "dataset context sent with each question: full, rows:N or chars:N")
	pf.String("source", "", "dataset source: csv or postgres")
	pf.StringP("dataset", "d", "", "path of the CSV dataset")
	pf.String("encoding", "", "character encoding of the CSV file")
	pf.String("table", "", "PostgreSQL table to load")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(askCmd, previewCmd, tablesCmd, configCmd)
}

// boundFlags returns the flags of cmd keyed by the config key they set.
func boundFlags(cmd *cobra.Command) map[string]*pflag.Flag {
	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for key, name := range flagKeys {
		flags[key] = cmd.Flags().Lookup(name)
	}
	return flags
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Execute runs the root command. Ctrl+C cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
