package extract

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enzyme-cli/internal/model"
)

// UniProtFields lists the REST return fields requested by the sequence stage,
// in the column order of the TSV response.
var UniProtFields = []string{
	"accession",
	"id",
	"protein_name",
	"gene_names",
	"ec",
	"organism_name",
	"organism_id",
	"sequence",
	"length",
	"xref_refseq",
	"reviewed",
}

// ParseUniProtTSV reads a UniProtKB REST response in TSV format. Columns are
// matched by header name, so extra or reordered columns are tolerated.
func ParseUniProtTSV(content []byte) ([]model.SequenceRecord, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "extract: read uniprot header")
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col["Entry"]; !ok {
		return nil, eris.Errorf("extract: uniprot response has no Entry column (got %v)", header)
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []model.SequenceRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "extract: read uniprot row")
		}
		rec := model.SequenceRecord{
			Accession:    get(row, "Entry"),
			EntryName:    get(row, "Entry Name"),
			ProteinNames: get(row, "Protein names"),
			GeneNames:    get(row, "Gene Names"),
			ECNumbers:    get(row, "EC number"),
			Organism:     get(row, "Organism"),
			OrganismID:   get(row, "Organism (ID)"),
			Sequence:     get(row, "Sequence"),
			RefSeq:       get(row, "RefSeq"),
			Reviewed:     get(row, "Reviewed"),
		}
		if rec.Accession == "" {
			continue
		}
		if n, err := strconv.Atoi(get(row, "Length")); err == nil {
			rec.Length = n
		}
		records = append(records, rec)
	}
	return records, nil
}
