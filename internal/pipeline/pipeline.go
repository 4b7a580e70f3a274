// Package pipeline chains the enrichment stages: names to EC numbers, EC
// numbers to catalog entries, entries to sequences and sequences to
// reactions. Stages hand their batches to each other through the store.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/store"
)

// Pipeline runs the stages in a fixed order over a shared store.
type Pipeline struct {
	store     store.Store
	keys      store.Keys
	names     *NameStage
	entries   *EntryStage
	sequences *SequenceStage
	reactions *ReactionStage
	now       func() time.Time
}

// New creates a Pipeline with all stages.
func New(
	st store.Store,
	keys store.Keys,
	names *NameStage,
	entries *EntryStage,
	sequences *SequenceStage,
	reactions *ReactionStage,
) *Pipeline {
	return &Pipeline{
		store:     st,
		keys:      keys,
		names:     names,
		entries:   entries,
		sequences: sequences,
		reactions: reactions,
		now:       time.Now,
	}
}

// derivedKeys are the batches computed from the seed names.
var derivedKeys = []string{
	store.KeyNameResults, store.KeyNotFoundNames,
	store.KeyEntries, store.KeyNotFoundCodes,
	store.KeySequences, store.KeyNotFoundSequences,
	store.KeyReactions, store.KeyNotFoundReactions,
	store.KeyRunSummary,
}

// Seed writes the starting enzyme names and drops every batch derived from
// earlier seeds, so a later stage never reads results of another input.
func (p *Pipeline) Seed(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return eris.New("pipeline: no seed names")
	}
	if err := store.Save(ctx, p.store, p.keys.Key(store.KeySeedNames), names); err != nil {
		return err
	}
	for _, name := range derivedKeys {
		key := p.keys.Key(name)
		if err := p.store.Delete(ctx, key); err != nil {
			return eris.Wrapf(err, "pipeline: clear %s", key)
		}
	}
	return nil
}

// Run executes every stage in order, then stores a run summary. It stops at
// the first error; only a missing input batch or a store failure can cause one.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	summary := &model.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: p.now().UTC(),
	}
	log := zap.L().With(zap.String("run_id", summary.RunID))
	log.Info("pipeline: starting run")

	for _, st := range model.AllStages() {
		ss, err := p.RunStage(ctx, st)
		if err != nil {
			log.Error("pipeline: stage failed", zap.String("stage", string(st)), zap.Error(err))
			return summary, err
		}
		if st == model.StageNames {
			summary.Seeds = ss.Input
		}
		summary.Stages = append(summary.Stages, ss)
	}

	summary.FinishedAt = p.now().UTC()
	if err := store.Save(ctx, p.store, p.keys.Key(store.KeyRunSummary), summary); err != nil {
		return summary, err
	}
	log.Info("pipeline: run complete",
		zap.Int("seeds", summary.Seeds),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

// RunStage executes one stage: it loads the stage's input batch, resolves
// it and writes the records and the not-found entries under their keys.
func (p *Pipeline) RunStage(ctx context.Context, st model.Stage) (model.StageSummary, error) {
	start := p.now()
	summary := model.StageSummary{Stage: st}

	var err error
	switch st {
	case model.StageNames:
		err = p.runNames(ctx, &summary)
	case model.StageEntries:
		err = p.runEntries(ctx, &summary)
	case model.StageSequences:
		err = p.runSequences(ctx, &summary)
	case model.StageReactions:
		err = p.runReactions(ctx, &summary)
	default:
		err = eris.Errorf("pipeline: unknown stage %q", st)
	}
	summary.DurationMs = p.now().Sub(start).Milliseconds()
	return summary, err
}

func (p *Pipeline) runNames(ctx context.Context, summary *model.StageSummary) error {
	names, err := store.Load[[]string](ctx, p.store, p.keys.Key(store.KeySeedNames))
	if err != nil {
		return err
	}
	batch, err := p.names.ResolveBatch(ctx, names)
	if err != nil {
		return eris.Wrap(err, "pipeline: names")
	}
	return saveBatch(ctx, p, summary, batch.Len(), batch, store.KeyNameResults, store.KeyNotFoundNames)
}

func (p *Pipeline) runEntries(ctx context.Context, summary *model.StageSummary) error {
	results, err := store.Load[[]model.NameResult](ctx, p.store, p.keys.Key(store.KeyNameResults))
	if err != nil {
		return err
	}
	codes := Codes(results)
	batch, err := p.entries.ResolveBatch(ctx, codes)
	if err != nil {
		return eris.Wrap(err, "pipeline: entries")
	}
	return saveBatch(ctx, p, summary, len(codes), batch, store.KeyEntries, store.KeyNotFoundCodes)
}

func (p *Pipeline) runSequences(ctx context.Context, summary *model.StageSummary) error {
	entries, err := store.Load[[]model.EnzymeEntry](ctx, p.store, p.keys.Key(store.KeyEntries))
	if err != nil {
		return err
	}
	accs, sources := Accessions(entries)
	batch, err := p.sequences.ResolveBatch(ctx, accs)
	if err != nil {
		return eris.Wrap(err, "pipeline: sequences")
	}
	for i := range batch.Records {
		batch.Records[i].Codes = sources[batch.Records[i].Accession]
	}
	return saveBatch(ctx, p, summary, len(accs), batch, store.KeySequences, store.KeyNotFoundSequences)
}

func (p *Pipeline) runReactions(ctx context.Context, summary *model.StageSummary) error {
	records, err := store.Load[[]model.SequenceRecord](ctx, p.store, p.keys.Key(store.KeySequences))
	if err != nil {
		return err
	}
	accs := make([]string, 0, len(records))
	for _, r := range records {
		accs = append(accs, r.Accession)
	}
	batch, err := p.reactions.ResolveBatch(ctx, accs)
	if err != nil {
		return eris.Wrap(err, "pipeline: reactions")
	}
	return saveBatch(ctx, p, summary, len(accs), batch, store.KeyReactions, store.KeyNotFoundReactions)
}

// saveBatch writes a stage's records and not-found entries. Both keys are
// always written, even when empty, so the next stage finds its input.
func saveBatch[T any](ctx context.Context, p *Pipeline, summary *model.StageSummary, input int, batch model.Batch[T], recordsKey, notFoundKey string) error {
	records := batch.Records
	if records == nil {
		records = []T{}
	}
	notFound := batch.NotFound
	if notFound == nil {
		notFound = []model.NotFound{}
	}
	if err := store.Save(ctx, p.store, p.keys.Key(recordsKey), records); err != nil {
		return err
	}
	if err := store.Save(ctx, p.store, p.keys.Key(notFoundKey), notFound); err != nil {
		return err
	}
	summary.Input = input
	summary.Resolved = len(batch.Records)
	summary.NotFound = len(batch.NotFound)
	return nil
}

// notFoundKeys maps each stage to the key of its not-found entries.
var notFoundKeys = map[model.Stage]string{
	model.StageNames:     store.KeyNotFoundNames,
	model.StageEntries:   store.KeyNotFoundCodes,
	model.StageSequences: store.KeyNotFoundSequences,
	model.StageReactions: store.KeyNotFoundReactions,
}

// NotFound returns the not-found entries of every stage that has run, in
// stage order.
func (p *Pipeline) NotFound(ctx context.Context) ([]model.NotFound, error) {
	var out []model.NotFound
	for _, st := range model.AllStages() {
		key := p.keys.Key(notFoundKeys[st])
		if _, ok, err := p.store.Get(ctx, key); err != nil {
			return nil, eris.Wrapf(err, "pipeline: get %s", key)
		} else if !ok {
			continue
		}
		entries, err := store.Load[[]model.NotFound](ctx, p.store, key)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

// Summary returns the summary of the last completed run.
func (p *Pipeline) Summary(ctx context.Context) (*model.RunSummary, error) {
	summary, err := store.Load[model.RunSummary](ctx, p.store, p.keys.Key(store.KeyRunSummary))
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
