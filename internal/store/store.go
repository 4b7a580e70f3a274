// Package store persists stage batches under well-known keys and caches
// fetched pages. Every backend speaks the same small key/value contract.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enzyme-cli/internal/resilience"
)

// Store is the shared key/value store the pipeline stages hand batches
// through, plus a TTL page cache for fetched content.
type Store interface {
	// Get returns the value under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Page cache. GetCachedPage returns nil, nil on a miss or an expired entry.
	GetCachedPage(ctx context.Context, urlHash string) ([]byte, error)
	SetCachedPage(ctx context.Context, urlHash string, content []byte, ttl time.Duration) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// PagePruner is implemented by stores that keep expired cache rows until
// they are removed. Redis expires its pages on its own.
type PagePruner interface {
	DeleteExpiredPages(ctx context.Context) (int, error)
}

// PruneExpiredPages removes expired cache rows when s keeps them. It returns
// how many rows went.
func PruneExpiredPages(ctx context.Context, s Store) (int, error) {
	p, ok := s.(PagePruner)
	if !ok {
		return 0, nil
	}
	return p.DeleteExpiredPages(ctx)
}

// Batch keys, in pipeline order.
const (
	KeySeedNames         = "seed_names"
	KeyNameResults       = "names_ec_results"
	KeyNotFoundNames     = "not_found_names"
	KeyEntries           = "uniprot_entries"
	KeyNotFoundCodes     = "not_found_ec"
	KeySequences         = "ent_seq_results"
	KeyNotFoundSequences = "not_found_sequences"
	KeyReactions         = "rhea_results"
	KeyNotFoundReactions = "not_found_reactions"
	KeyRunSummary        = "run_summary"
)

// Keys namespaces batch keys so several datasets can share one store.
type Keys struct {
	Prefix string
}

// Key returns name under the configured prefix.
func (k Keys) Key(name string) string {
	if k.Prefix == "" {
		return name
	}
	return k.Prefix + ":" + name
}

// Load decodes the JSON value under key into a T. A missing key is a
// ConfigurationError: a stage never proceeds on an absent input.
func Load[T any](ctx context.Context, s Store, key string) (T, error) {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return out, eris.Wrapf(err, "store: get %s", key)
	}
	if !ok {
		return out, &resilience.ConfigurationError{Key: key, Reason: "input batch not present"}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, eris.Wrapf(err, "store: decode %s", key)
	}
	return out, nil
}

// Save encodes v as JSON under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "store: encode %s", key)
	}
	return eris.Wrapf(s.Set(ctx, key, raw), "store: set %s", key)
}
