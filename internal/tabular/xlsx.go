package tabular

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/enzyme-cli/internal/model"
)

// XLSXOptions configures the XLSX reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX reads one sheet of an XLSX file and returns all rows as string slices.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return rows, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// Sheet names of the exported workbook.
const (
	SheetEnzymes  = "Enzymes"
	SheetNotFound = "Not Found"
)

// WriteXLSX saves the dataset rows and, when any exist, the not-found
// entries on a second sheet.
func WriteXLSX(path string, rows []model.ExportRow, notFound []model.NotFound) error {
	f := xlsx.NewFile()

	if err := addSheet(f, SheetEnzymes, ExportHeader, len(rows), func(i int) []string {
		return exportRecord(rows[i])
	}); err != nil {
		return err
	}
	if len(notFound) > 0 {
		if err := addSheet(f, SheetNotFound, NotFoundHeader, len(notFound), func(i int) []string {
			return notFoundRecord(notFound[i])
		}); err != nil {
			return err
		}
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

func addSheet(f *xlsx.File, name string, header []string, n int, record func(i int) []string) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %s", name)
	}
	writeRow(sheet, header)
	for i := range n {
		writeRow(sheet, record(i))
	}
	return nil
}

func writeRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
