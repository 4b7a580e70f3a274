package model

// SequenceRecord is one UniProtKB entry fetched for a catalog accession.
type SequenceRecord struct {
	Accession    string   `json:"accession"`
	EntryName    string   `json:"entry_name,omitempty"`
	ProteinNames string   `json:"protein_names,omitempty"`
	GeneNames    string   `json:"gene_names,omitempty"`
	ECNumbers    string   `json:"ec_numbers,omitempty"`
	Organism     string   `json:"organism,omitempty"`
	OrganismID   string   `json:"organism_id,omitempty"`
	Sequence     string   `json:"sequence,omitempty"`
	Length       int      `json:"length,omitempty"`
	RefSeq       string   `json:"refseq,omitempty"`
	Reviewed     string   `json:"reviewed,omitempty"`
	Codes        []string `json:"source_ec_numbers,omitempty"`
}
