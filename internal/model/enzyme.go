// Package model defines the records produced by each stage of the enrichment pipeline.
package model

// Stage names a pipeline stage. It tags not-found entries and run summaries.
type Stage string

const (
	StageNames     Stage = "names"
	StageEntries   Stage = "entries"
	StageSequences Stage = "sequences"
	StageReactions Stage = "reactions"
)

// AllStages returns the stages in pipeline order.
func AllStages() []Stage {
	return []Stage{StageNames, StageEntries, StageSequences, StageReactions}
}

// CodeMatch is one EC number returned by a name search.
type CodeMatch struct {
	Code  string   `json:"ec_number"`
	Names []string `json:"names,omitempty"`
	Query string   `json:"query"`
}

// NameResult is the name stage record: every EC number a seed name matched.
// Duplicate marks codes already claimed by an earlier name in the same run.
type NameResult struct {
	Name      string      `json:"name"`
	Matches   []CodeMatch `json:"matches"`
	Duplicate []string    `json:"duplicate,omitempty"`
}

// EnzymeEntry is the entries stage record for one EC number.
//
// Code is the identifier the record was resolved from and never changes.
// ResolvedCode is the last hop when the entry was transferred, and Chain holds
// every code visited on the way (starting with Code).
type EnzymeEntry struct {
	Code             string   `json:"ec_number"`
	ResolvedCode     string   `json:"resolved_ec_number"`
	Chain            []string `json:"chain,omitempty"`
	AcceptedName     string   `json:"accepted_name"`
	AlternativeNames []string `json:"alternative_names,omitempty"`
	Accessions       []string `json:"entries,omitempty"`
}

// Transferred reports whether the entry was reached through at least one redirect.
func (e EnzymeEntry) Transferred() bool {
	return e.ResolvedCode != "" && e.ResolvedCode != e.Code
}

// HasContent reports whether any of the content fields were extracted.
func (e EnzymeEntry) HasContent() bool {
	return e.AcceptedName != "" || len(e.AlternativeNames) > 0 || len(e.Accessions) > 0
}
