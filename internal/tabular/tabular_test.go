package tabular

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/enzyme-cli/internal/model"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadRoster_XLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"ID", "Protein"},
			{"1", "urease"},
			{"2", " catalase "},
			{"3", ""},
			{"4"},
		},
	})

	names, err := ReadRoster(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"urease", "catalase"}, names)
}

func TestReadRoster_CSVWithoutHeader(t *testing.T) {
	path := writeFile(t, "roster.csv", "urease,x\ncatalase,y\n")

	names, err := ReadRoster(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"urease", "catalase"}, names)
}

func TestReadRoster_TSVHeader(t *testing.T) {
	path := writeFile(t, "roster.tsv", "note\tprotein\nseed\turease\n")

	names, err := ReadRoster(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"urease"}, names)
}

func TestReadRoster_Text(t *testing.T) {
	path := writeFile(t, "roster.txt", "# seeds\nurease\n\n  alcohol dehydrogenase  \n")

	names, err := ReadRoster(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"urease", "alcohol dehydrogenase"}, names)
}

func TestReadRoster_Missing(t *testing.T) {
	_, err := ReadRoster(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestReadXLSX_SheetSelection(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Data": {{"a"}}})

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Data"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}}, rows)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Other"})
	assert.ErrorContains(t, err, `sheet "Other" not found`)

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	assert.ErrorContains(t, err, "out of range")
}

func TestStreamCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader("a\nb\n"), CSVOptions{})
	assert.Error(t, err)
}

var sampleRows = []model.ExportRow{
	{
		Accession:    "P07374",
		Code:         "3.5.1.5",
		AcceptedName: "urease",
		ProteinNames: "Urease",
		Organism:     "Canavalia ensiformis",
		Sequence:     "MKLSPREVEK",
		ReactionText: "A + B = C",
		Structure:    "s1.s2>>s3",
	},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(ExportHeader, ","), lines[0])
	assert.Equal(t, "P07374,3.5.1.5,urease,Urease,Canavalia ensiformis,MKLSPREVEK,A + B = C,s1.s2>>s3", lines[1])
}

func TestWriteNotFoundCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotFoundCSV(&buf, []model.NotFound{
		{ID: "zzz", Stage: model.StageNames, ErrorType: "terminal", Reason: "zzz: no enzyme matches the name"},
	}))
	assert.Contains(t, buf.String(), "names,zzz,terminal,zzz: no enzyme matches the name")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	notFound := []model.NotFound{{ID: "P41020", Stage: model.StageSequences, ErrorType: "terminal", Reason: "no uniprot record"}}
	require.NoError(t, WriteXLSX(path, sampleRows, notFound))

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: SheetEnzymes})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ExportHeader, rows[0])
	assert.Equal(t, "s1.s2>>s3", rows[1][7])

	audit, err := ReadXLSX(path, XLSXOptions{SheetName: SheetNotFound})
	require.NoError(t, err)
	require.Len(t, audit, 2)
	assert.Equal(t, []string{"sequences", "P41020", "terminal", "no uniprot record"}, audit[1])
}

func TestWriteXLSX_NoAuditSheetWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, sampleRows, nil))

	_, err := ReadXLSX(path, XLSXOptions{SheetName: SheetNotFound})
	assert.Error(t, err)
}

func TestWriteFASTA(t *testing.T) {
	seq := strings.Repeat("A", 60) + strings.Repeat("C", 5)
	var buf bytes.Buffer
	n, err := WriteFASTA(&buf, []model.SequenceRecord{
		{Accession: "P07374", ProteinNames: "Urease", Sequence: seq},
		{Accession: "P41020", ProteinNames: "Empty"},
		{Accession: "Q1", Sequence: "MK"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := ">P07374 Urease\n" + strings.Repeat("A", 60) + "\nCCCCC\n" +
		">Q1 unknown_protein\nMK\n"
	assert.Equal(t, want, buf.String())
}
