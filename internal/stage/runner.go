// Package stage fans a batch of identifiers out to a worker and collects the
// results into resolved records and not-found entries.
package stage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/resilience"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// Worker resolves one identifier. A nil record with a nil error means the
// identifier resolved to nothing.
type Worker[T any] func(ctx context.Context, id string) (*T, error)

// Options configure one stage run.
type Options struct {
	Stage       model.Stage
	Concurrency int
}

// outcome is the slot filled by the worker for one input position.
type outcome[T any] struct {
	record   *T
	notFound *model.NotFound
}

// job is one distinct identifier and the slot its outcome fills.
type job struct {
	slot int
	id   string
}

// collector serializes writes from concurrently finishing workers.
type collector[T any] struct {
	mu    sync.Mutex
	slots []outcome[T]
}

func (c *collector[T]) put(i int, o outcome[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[i] = o
}

// Run applies work to every distinct identifier in ids with at most
// opts.Concurrency workers in flight. Each identifier lands in exactly one of
// the returned Records or NotFound. A failing worker never cancels the others,
// and results are reported in input order. Blank identifiers are reported as
// not found without reaching work.
func Run[T any](ctx context.Context, opts Options, ids []string, work Worker[T]) model.Batch[T] {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	log := zap.L().With(zap.String("stage", string(opts.Stage)))

	col := &collector[T]{slots: make([]outcome[T], 0, len(ids))}
	var jobs []job
	var resolved, missing atomic.Int64
	seen := make(map[string]bool, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		switch {
		case id == "":
			missing.Add(1)
			col.slots = append(col.slots, outcome[T]{notFound: &model.NotFound{
				ID:        raw,
				Stage:     opts.Stage,
				Reason:    "blank identifier",
				ErrorType: resilience.ErrorTypeTerminal,
			}})
		case seen[id]:
		default:
			seen[id] = true
			jobs = append(jobs, job{slot: len(col.slots), id: id})
			col.slots = append(col.slots, outcome[T]{})
		}
	}

	log.Info("stage: starting",
		zap.Int("identifiers", len(jobs)),
		zap.Int64("blank", missing.Load()),
		zap.Int("concurrency", concurrency),
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, j := range jobs {
		i, id := j.slot, j.id
		g.Go(func() error {
			record, err := call(gctx, work, id)
			switch {
			case err != nil:
				missing.Add(1)
				log.Warn("stage: identifier not found", zap.String("id", id), zap.Error(err))
				col.put(i, outcome[T]{notFound: &model.NotFound{
					ID:        id,
					Stage:     opts.Stage,
					Reason:    err.Error(),
					ErrorType: resilience.ClassifyError(err),
				}})
			case record == nil:
				missing.Add(1)
				log.Debug("stage: identifier resolved to nothing", zap.String("id", id))
				col.put(i, outcome[T]{notFound: &model.NotFound{
					ID:        id,
					Stage:     opts.Stage,
					Reason:    "no record",
					ErrorType: resilience.ErrorTypeTerminal,
				}})
			default:
				resolved.Add(1)
				col.put(i, outcome[T]{record: record})
			}
			return nil // one identifier never aborts the stage
		})
	}
	_ = g.Wait()

	var batch model.Batch[T]
	for _, o := range col.slots {
		if o.record != nil {
			batch.Records = append(batch.Records, *o.record)
		} else if o.notFound != nil {
			batch.NotFound = append(batch.NotFound, *o.notFound)
		}
	}

	log.Info("stage: complete",
		zap.Int64("resolved", resolved.Load()),
		zap.Int64("not_found", missing.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return batch
}

// call runs work and turns a panic into an error for that identifier.
func call[T any](ctx context.Context, work Worker[T], id string) (record *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			record, err = nil, fmt.Errorf("worker panic: %v", r)
		}
	}()
	return work(ctx, id)
}

// Dedupe trims identifiers and drops blanks and repeats. The first
// occurrence wins, so order is preserved.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Set is a write-once membership set shared by the workers of one stage.
type Set struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[string]bool)}
}

// Claim adds key and reports whether this call was the first to add it.
func (s *Set) Claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return false
	}
	s.seen[key] = true
	return true
}

// Len returns the number of claimed keys.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
