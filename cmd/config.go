package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DachengChen/paiData/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Writes the built-in defaults to ~/.paidata/config.json (or --config).
An existing file is never overwritten. The API key is not part of the
file: set the variable named by ai.credential_env or type it at startup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the configuration and print any warnings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile, boundFlags(cmd))
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "provider %s, protocol %s, model %s\n",
			cfg.AI.Provider, cfg.AI.ResolvedProtocol(), cfg.AI.ResolvedModel())
		fmt.Fprintf(w, "API key from $%s\n", cfg.AI.ResolvedCredentialEnv())

		warnings := cfg.Validate()
		for _, msg := range warnings {
			fmt.Fprintln(w, "warning:", msg)
		}
		if len(warnings) == 0 {
			fmt.Fprintln(w, "configuration OK")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configCheckCmd)
}
