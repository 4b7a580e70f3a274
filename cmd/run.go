package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/tabular"
)

var (
	runEnzymes []string
	runFile    string
	runExport  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage for a set of enzyme names",
	Long:  "Seeds the store with enzyme names from --enzyme or --file, then runs the name, entry, sequence and reaction stages in order.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		names, err := seedNames(ctx, runEnzymes, runFile)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.Seed(ctx, names); err != nil {
			return eris.Wrap(err, "seed names")
		}
		zap.L().Info("seeded enzyme names", zap.Int("count", len(names)))

		summary, err := env.Pipeline.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "run pipeline")
		}
		formatSummary(cmd.OutOrStdout(), summary)

		if runExport {
			return exportDataset(ctx, env, cfg.Export.Path, cfg.Export.Format, cfg.Export.FastaPath)
		}
		return nil
	},
}

// seedNames collects the starting names from the flags. At least one source
// is required.
func seedNames(ctx context.Context, enzymes []string, file string) ([]string, error) {
	if len(enzymes) == 0 && file == "" {
		return nil, eris.New("one of --enzyme or --file is required")
	}
	names := append([]string(nil), enzymes...)
	if file != "" {
		fromFile, err := tabular.ReadRoster(ctx, file)
		if err != nil {
			return nil, eris.Wrapf(err, "read roster %s", file)
		}
		names = append(names, fromFile...)
	}
	if len(names) == 0 {
		return nil, eris.Errorf("no enzyme names found in %s", file)
	}
	return names, nil
}

// formatSummary prints one line per stage.
func formatSummary(w io.Writer, s *model.RunSummary) {
	fmt.Fprintf(w, "run %s: %d seed names\n", s.RunID, s.Seeds)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tINPUT\tRESOLVED\tNOT FOUND\tDURATION")
	for _, st := range s.Stages {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
			st.Stage, st.Input, st.Resolved, st.NotFound,
			(time.Duration(st.DurationMs) * time.Millisecond).String(),
		)
	}
	_ = tw.Flush()
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func init() {
	runCmd.Flags().StringSliceVar(&runEnzymes, "enzyme", nil, "enzyme name to resolve (repeatable)")
	runCmd.Flags().StringVar(&runFile, "file", "", "roster of enzyme names (.xlsx, .csv, .tsv or plain text)")
	runCmd.Flags().BoolVar(&runExport, "export", false, "export the dataset after the run")
	rootCmd.AddCommand(runCmd)
}
