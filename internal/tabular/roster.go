// Package tabular reads seed rosters and writes the enriched dataset as
// XLSX, CSV or FASTA.
package tabular

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// RosterColumn is the header of the column holding enzyme names.
const RosterColumn = "Protein"

// ReadRoster returns the enzyme names listed in path. XLSX and CSV files are
// read from the RosterColumn column, or the first column when no header
// matches; any other file is read one name per line. Blank names are dropped.
func ReadRoster(ctx context.Context, path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err := ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return nil, err
		}
		return column(rows), nil
	case ".csv", ".tsv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "roster: open")
		}
		defer f.Close() //nolint:errcheck

		opts := CSVOptions{LazyQuotes: true, TrimSpace: true}
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			opts.Delimiter = '\t'
		}
		rows, err := ReadCSV(ctx, f, opts)
		if err != nil {
			return nil, err
		}
		return column(rows), nil
	default:
		return readLines(path)
	}
}

// column picks the RosterColumn values out of rows. Without a matching
// header every row, including the first, is a name in column 0.
func column(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	idx, start := 0, 0
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), RosterColumn) {
			idx, start = i, 1
			break
		}
	}

	var names []string
	for _, row := range rows[start:] {
		if idx >= len(row) {
			continue
		}
		if name := strings.TrimSpace(row[idx]); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "roster: open")
	}
	defer f.Close() //nolint:errcheck

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, eris.Wrap(sc.Err(), "roster: read lines")
}
