package pipeline

import (
	"context"

	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/store"
)

// Rows joins the stored entries, sequences and reactions into the final
// dataset, one row per sequence record in stage order.
func (p *Pipeline) Rows(ctx context.Context) ([]model.ExportRow, error) {
	entries, err := store.Load[[]model.EnzymeEntry](ctx, p.store, p.keys.Key(store.KeyEntries))
	if err != nil {
		return nil, err
	}
	sequences, err := store.Load[[]model.SequenceRecord](ctx, p.store, p.keys.Key(store.KeySequences))
	if err != nil {
		return nil, err
	}
	reactions, err := store.Load[[]model.ReactionRecord](ctx, p.store, p.keys.Key(store.KeyReactions))
	if err != nil {
		return nil, err
	}
	return JoinRows(entries, sequences, reactions), nil
}

// Sequences returns the stored sequence records.
func (p *Pipeline) Sequences(ctx context.Context) ([]model.SequenceRecord, error) {
	return store.Load[[]model.SequenceRecord](ctx, p.store, p.keys.Key(store.KeySequences))
}

// JoinRows builds export rows from stage records. Sequences without
// reactions still produce a row with empty reaction fields.
func JoinRows(entries []model.EnzymeEntry, sequences []model.SequenceRecord, reactions []model.ReactionRecord) []model.ExportRow {
	byCode := make(map[string]model.EnzymeEntry, len(entries))
	for _, e := range entries {
		byCode[e.Code] = e
	}
	byAcc := make(map[string]model.ReactionRecord, len(reactions))
	for _, r := range reactions {
		byAcc[r.Accession] = r
	}

	rows := make([]model.ExportRow, 0, len(sequences))
	for _, s := range sequences {
		row := model.ExportRow{
			Accession:    s.Accession,
			ProteinNames: s.ProteinNames,
			Organism:     s.Organism,
			Sequence:     s.Sequence,
		}
		if len(s.Codes) > 0 {
			row.Code = s.Codes[0]
			row.AcceptedName = byCode[row.Code].AcceptedName
		}
		if r, ok := byAcc[s.Accession]; ok {
			row.ReactionText = r.Text
			row.Structure = r.Structure
		}
		rows = append(rows, row)
	}
	return rows
}
