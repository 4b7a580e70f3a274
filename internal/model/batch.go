package model

import "time"

// NotFound records an identifier that failed every resolution attempt for a stage.
type NotFound struct {
	ID        string `json:"id" yaml:"id"`
	Stage     Stage  `json:"stage" yaml:"stage"`
	Reason    string `json:"reason" yaml:"reason"`
	ErrorType string `json:"error_type" yaml:"error_type"`
}

// Batch is the output of one stage run: resolved records and the identifiers
// that could not be resolved. An input identifier lands in exactly one of the two.
type Batch[T any] struct {
	Records  []T        `json:"records"`
	NotFound []NotFound `json:"not_found"`
}

// Len returns the number of identifiers accounted for by the batch.
func (b Batch[T]) Len() int {
	return len(b.Records) + len(b.NotFound)
}

// StageSummary captures the counts of a single stage run.
type StageSummary struct {
	Stage      Stage `json:"stage" yaml:"stage"`
	Input      int   `json:"input" yaml:"input"`
	Resolved   int   `json:"resolved" yaml:"resolved"`
	NotFound   int   `json:"not_found" yaml:"not_found"`
	DurationMs int64 `json:"duration_ms" yaml:"duration_ms"`
}

// RunSummary is persisted at the end of an orchestrator run.
type RunSummary struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at" yaml:"finished_at"`
	Seeds      int            `json:"seeds" yaml:"seeds"`
	Stages     []StageSummary `json:"stages" yaml:"stages"`
}

// ExportRow is one row of the final enriched dataset.
type ExportRow struct {
	Accession    string
	Code         string
	AcceptedName string
	ProteinNames string
	Organism     string
	Sequence     string
	ReactionText string
	Structure    string
}
