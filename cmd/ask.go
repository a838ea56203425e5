package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/credential"
	"github.com/DachengChen/paiData/session"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Answer one question about the dataset and exit",
	Long: `Loads the dataset, sends a single question and prints the answer.

When the API key is not in the environment it is read from the terminal
without echo, or as one line from piped standard input.`,
	Example: `  paidata ask "What is the total revenue?"
  paidata ask --policy rows:100 "Which region sold the most?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	label := a.cfg.AI.CredentialLabel()
	stderr := cmd.ErrOrStderr()

	if _, err := a.resolver.Resolve(); errors.Is(err, credential.ErrMissing) {
		if err := credential.PromptTerminal(a.resolver, os.Stdin, stderr, label); err != nil {
			return report(stderr, session.PresentError(err, label), err)
		}
	}

	ctx := cmd.Context()
	ds, err := session.LoadDataset(ctx, a.cfg.Dataset)
	if err != nil {
		applog.Error("dataset load failed: %v", err)
		return report(stderr, session.PresentError(err, label), err)
	}

	sess, err := session.New(a.session, ds, a.protocol, a.resolver, applog.L())
	if err != nil {
		return report(stderr, session.PresentError(err, label), err)
	}

	out := sess.Ask(ctx, strings.Join(args, " "))
	if out.Skipped {
		return errors.New("question is empty")
	}
	if f, failed := out.Result.Failure(); failed {
		return report(stderr, "Error: "+out.Text(), f)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Bot: "+out.Text())
	return nil
}

// report prints msg and returns err marked as already shown.
func report(w io.Writer, msg string, err error) error {
	fmt.Fprintln(w, msg)
	return reportedError{err}
}
