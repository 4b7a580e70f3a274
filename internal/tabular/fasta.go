package tabular

import (
	"bufio"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enzyme-cli/internal/model"
)

// FASTALineWidth is the number of residues per sequence line.
const FASTALineWidth = 60

// WriteFASTA writes one record per sequence as ">accession protein names"
// followed by the sequence wrapped at FASTALineWidth. Records without a
// sequence are skipped. It returns the number of records written.
func WriteFASTA(w io.Writer, records []model.SequenceRecord) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, r := range records {
		if r.Sequence == "" {
			continue
		}
		name := r.ProteinNames
		if name == "" {
			name = "unknown_protein"
		}
		if _, err := bw.WriteString(">" + r.Accession + " " + name + "\n"); err != nil {
			return n, eris.Wrap(err, "fasta: write header")
		}
		for i := 0; i < len(r.Sequence); i += FASTALineWidth {
			end := min(i+FASTALineWidth, len(r.Sequence))
			if _, err := bw.WriteString(r.Sequence[i:end] + "\n"); err != nil {
				return n, eris.Wrap(err, "fasta: write sequence")
			}
		}
		n++
	}
	return n, eris.Wrap(bw.Flush(), "fasta: flush")
}
