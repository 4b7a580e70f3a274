package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enzyme-cli/internal/tabular"
)

// Export formats.
const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
)

var (
	exportPath   string
	exportFormat string
	exportFasta  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the enriched dataset and the not-found audit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return exportDataset(ctx, env, pick(exportPath, cfg.Export.Path), pick(exportFormat, cfg.Export.Format), pick(exportFasta, cfg.Export.FastaPath))
	},
}

// exportDataset writes the joined rows to path. XLSX carries the not-found
// audit as a second sheet; CSV writes it next to path with a _not_found
// suffix. A non-empty fastaPath also gets the sequences in FASTA format.
func exportDataset(ctx context.Context, env *pipelineEnv, path, format, fastaPath string) error {
	rows, err := env.Pipeline.Rows(ctx)
	if err != nil {
		return eris.Wrap(err, "export: load rows")
	}
	notFound, err := env.Pipeline.NotFound(ctx)
	if err != nil {
		return eris.Wrap(err, "export: load not found")
	}

	switch strings.ToLower(format) {
	case formatXLSX:
		if err := tabular.WriteXLSX(path, rows, notFound); err != nil {
			return err
		}
	case formatCSV:
		if err := writeFile(path, func(f *os.File) error { return tabular.WriteCSV(f, rows) }); err != nil {
			return err
		}
		if err := writeFile(notFoundPath(path), func(f *os.File) error { return tabular.WriteNotFoundCSV(f, notFound) }); err != nil {
			return err
		}
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
	zap.L().Info("dataset exported",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("not_found", len(notFound)),
	)

	if fastaPath == "" {
		return nil
	}
	sequences, err := env.Pipeline.Sequences(ctx)
	if err != nil {
		return eris.Wrap(err, "export: load sequences")
	}
	var n int
	if err := writeFile(fastaPath, func(f *os.File) error {
		var werr error
		n, werr = tabular.WriteFASTA(f, sequences)
		return werr
	}); err != nil {
		return err
	}
	zap.L().Info("sequences exported", zap.String("path", fastaPath), zap.Int("records", n))
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

func notFoundPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_not_found" + ext
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func init() {
	exportCmd.Flags().StringVar(&exportPath, "out", "", "output path (default from export.path)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "xlsx or csv (default from export.format)")
	exportCmd.Flags().StringVar(&exportFasta, "fasta", "", "also write sequences as FASTA to this path")
	rootCmd.AddCommand(exportCmd)
}
