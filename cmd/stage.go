package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/enzyme-cli/internal/model"
)

var stageCmd = &cobra.Command{
	Use:   "stage <names|entries|sequences|reactions>",
	Short: "Run a single stage against the batch already in the store",
	Long:  "Runs one stage. Its input batch must have been written by the previous stage (or by run/seed for the names stage).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := parseStage(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.Pipeline.RunStage(ctx, st)
		if err != nil {
			return eris.Wrapf(err, "stage %s", st)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d input, %d resolved, %d not found\n",
			summary.Stage, summary.Input, summary.Resolved, summary.NotFound)
		return nil
	},
}

func parseStage(name string) (model.Stage, error) {
	for _, st := range model.AllStages() {
		if strings.EqualFold(name, string(st)) {
			return st, nil
		}
	}
	return "", eris.Errorf("unknown stage %q", name)
}

func init() {
	rootCmd.AddCommand(stageCmd)
}
