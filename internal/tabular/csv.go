package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enzyme-cli/internal/model"
)

// CSVOptions configures the streaming CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads CSV rows and sends them to a channel.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV collects every row of StreamCSV.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([][]string, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportHeader is the column order of the dataset export.
var ExportHeader = []string{
	"Entry",
	"EC number",
	"Accepted name",
	"Protein names",
	"Organism",
	"Sequence",
	"Text_reaction",
	"SMILES_reaction",
}

// NotFoundHeader is the column order of the not-found audit.
var NotFoundHeader = []string{"Stage", "ID", "Error type", "Reason"}

func exportRecord(r model.ExportRow) []string {
	return []string{r.Accession, r.Code, r.AcceptedName, r.ProteinNames, r.Organism, r.Sequence, r.ReactionText, r.Structure}
}

func notFoundRecord(nf model.NotFound) []string {
	return []string{string(nf.Stage), nf.ID, nf.ErrorType, nf.Reason}
}

// WriteCSV writes the dataset rows with a header line.
func WriteCSV(w io.Writer, rows []model.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for i, r := range rows {
		if err := cw.Write(exportRecord(r)); err != nil {
			return eris.Wrapf(err, "csv: write row %d", i)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

// WriteNotFoundCSV writes the not-found audit with a header line.
func WriteNotFoundCSV(w io.Writer, notFound []model.NotFound) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(NotFoundHeader); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, nf := range notFound {
		if err := cw.Write(notFoundRecord(nf)); err != nil {
			return eris.Wrapf(err, "csv: write not found %s", nf.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}
