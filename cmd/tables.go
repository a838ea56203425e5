package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/DachengChen/paiData/db"
)

var tablesSchema string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of the configured PostgreSQL database",
	Long: `Connects with the dataset.postgres settings (through the SSH tunnel
when enabled) and lists the base tables of a schema with estimated row
counts, to help pick dataset.postgres.table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		pg := cfg.Dataset.Postgres
		schema := tablesSchema
		if schema == "" {
			schema = pg.Schema
		}

		conn, err := db.Connect(cmd.Context(), pg)
		if err != nil {
			return err
		}
		defer conn.Close()

		tables, err := conn.ListTables(cmd.Context(), schema)
		if err != nil {
			return fmt.Errorf("listing tables: %w", err)
		}
		if len(tables) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no tables in schema %q\n", schema)
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("SCHEMA", "TABLE", "ROWS")
		for _, ti := range tables {
			t.Row(ti.Schema, ti.Name, db.FormatRowCount(ti.RowCount))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVar(&tablesSchema, "schema", "", "schema to list (default dataset.postgres.schema)")
}
