package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DachengChen/paiData/dataset"
	"github.com/DachengChen/paiData/session"
)

var (
	previewRows    int
	previewContext bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Load the dataset and print its first rows",
	Long: `Loads the dataset the same way the TUI does and prints a summary and
the first rows. With --context the text sent to the model with every
question is printed instead, so the context policy can be checked
without spending any requests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sc, err := session.FromConfig(cfg)
		if err != nil {
			return err
		}

		ds, err := session.LoadDataset(cmd.Context(), cfg.Dataset)
		if err != nil {
			return report(cmd.ErrOrStderr(), session.PresentError(err, cfg.AI.CredentialLabel()), err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Dataset Loaded Successfully!", ds.Summary())

		frag := dataset.Build(ds, sc.Policy)
		if previewContext {
			fmt.Fprintln(w, frag.Text)
		} else {
			fmt.Fprintln(w, dataset.Build(ds.Head(previewRows), dataset.Full()).Text)
		}

		info := fmt.Sprintf("Context: %s, %d characters", frag.Policy, frag.Len())
		if frag.Truncated {
			info += " (truncated)"
		}
		fmt.Fprintln(cmd.ErrOrStderr(), info)
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 5, "number of rows to show")
	previewCmd.Flags().BoolVar(&previewContext, "context", false, "print the model context instead of the first rows")
}
