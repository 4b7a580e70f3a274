package pipeline

import (
	"context"

	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/redirect"
	"github.com/sells-group/enzyme-cli/internal/stage"
)

// EntryStage resolves EC numbers to catalog entries, chasing transfers.
type EntryStage struct {
	resolver    *redirect.Resolver
	concurrency int
}

// NewEntryStage creates an EntryStage.
func NewEntryStage(resolver *redirect.Resolver, concurrency int) *EntryStage {
	return &EntryStage{resolver: resolver, concurrency: concurrency}
}

// ResolveBatch resolves every code through the redirection resolver.
func (s *EntryStage) ResolveBatch(ctx context.Context, codes []string) (model.Batch[model.EnzymeEntry], error) {
	batch := stage.Run(ctx, stage.Options{Stage: model.StageEntries, Concurrency: s.concurrency}, codes,
		s.resolver.Resolve)
	return batch, ctx.Err()
}

// Accessions flattens entries into distinct accessions, first seen first,
// and maps every accession to the codes that list it.
func Accessions(entries []model.EnzymeEntry) ([]string, map[string][]string) {
	var accs []string
	sources := make(map[string][]string)
	for _, e := range entries {
		for _, acc := range e.Accessions {
			if _, ok := sources[acc]; !ok {
				accs = append(accs, acc)
			}
			sources[acc] = appendUnique(sources[acc], e.Code)
		}
	}
	return accs, sources
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
