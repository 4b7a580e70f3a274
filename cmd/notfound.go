package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/enzyme-cli/internal/model"
)

var (
	notFoundJSON    bool
	notFoundSummary bool
)

// auditReport is the document printed by the notfound command.
type auditReport struct {
	Summary  *model.RunSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Total    int               `json:"total" yaml:"total"`
	NotFound []model.NotFound  `json:"not_found" yaml:"not_found"`
}

var notFoundCmd = &cobra.Command{
	Use:   "notfound",
	Short: "Print every identifier that could not be resolved, by stage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := env.Pipeline.NotFound(ctx)
		if err != nil {
			return eris.Wrap(err, "notfound")
		}
		report := auditReport{Total: len(entries), NotFound: entries}
		if report.NotFound == nil {
			report.NotFound = []model.NotFound{}
		}
		if notFoundSummary {
			summary, err := env.Pipeline.Summary(ctx)
			if err != nil {
				return eris.Wrap(err, "notfound: load run summary")
			}
			report.Summary = summary
		}
		return writeReport(cmd.OutOrStdout(), report, notFoundJSON)
	},
}

func writeReport(w io.Writer, report auditReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(report), "encode json report")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return eris.Wrap(err, "encode yaml report")
	}
	return eris.Wrap(enc.Close(), "close yaml encoder")
}

func init() {
	notFoundCmd.Flags().BoolVar(&notFoundJSON, "json", false, "print JSON instead of YAML")
	notFoundCmd.Flags().BoolVar(&notFoundSummary, "summary", false, "include the last run summary")
	rootCmd.AddCommand(notFoundCmd)
}
