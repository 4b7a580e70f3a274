package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/enzyme-cli/internal/config"
	"github.com/sells-group/enzyme-cli/internal/fetcher"
	"github.com/sells-group/enzyme-cli/internal/pipeline"
	"github.com/sells-group/enzyme-cli/internal/redirect"
	"github.com/sells-group/enzyme-cli/internal/resilience"
	"github.com/sells-group/enzyme-cli/internal/store"
)

// pipelineEnv holds the store, the fetch client and the pipeline needed by
// the run/stage/export/notfound commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	closers  []func()
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	for i := len(pe.closers) - 1; i >= 0; i-- {
		pe.closers[i]()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// newFetchClient builds the single-attempt client used by every stage. The
// returned func releases the browser, if one was started. Tests replace it
// with a stub.
var newFetchClient = func(c *config.Config) (fetcher.Client, func(), error) {
	mux := &fetcher.Mux{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:    c.Fetch.UserAgent,
			Timeout:      c.Fetch.Timeout(),
			MaxBodyBytes: int64(c.Fetch.MaxBodyMB) << 20,
			DefaultRate:  rate.Limit(c.Fetch.DefaultRate),
			RateLimiters: fetcher.DefaultRateLimiters(),
		}),
	}
	if !c.Browser.Enabled {
		zap.L().Warn("browser disabled, name and reaction stages will fail their fetches")
		return mux, func() {}, nil
	}

	browser, err := fetcher.NewBrowserFetcher(fetcher.BrowserOptions{
		Headless:          c.Browser.Headless,
		ExecPath:          c.Browser.ExecPath,
		UserAgent:         c.Fetch.UserAgent,
		NavigationTimeout: secs(c.Browser.NavigationTimeoutSecs),
		WaitTimeout:       secs(c.Browser.WaitTimeoutSecs),
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "start browser")
	}
	mux.Browser = browser
	return mux, browser.Close, nil
}

// initStore opens the configured store, applies its schema and drops expired
// cache rows. A failed prune is logged and does not stop the command.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	n, err := store.PruneExpiredPages(ctx, st)
	if err != nil {
		zap.L().Warn("page cache prune failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Info("pruned expired cached pages", zap.Int("pages", n))
	}
	return st, nil
}

// initPipeline validates the config, opens the store, builds the fetch chain
// and wires the stages into a Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &pipelineEnv{Store: st}

	base, release, err := newFetchClient(cfg)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.closers = append(env.closers, release)

	// Retries wrap the single-attempt clients; the cache sits outside so a
	// cached page never costs an attempt.
	client := fetcher.WithCache(
		fetcher.WithRetry(base, resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.DelayMs)),
		st,
		cfg.Fetch.CacheTTL(),
	)

	src := cfg.Sources
	pc := cfg.Pipeline
	env.Pipeline = pipeline.New(
		st,
		store.Keys{Prefix: cfg.Store.KeyPrefix},
		pipeline.NewNameStage(client, src.EnzymeBaseURL, pc.NameConcurrency),
		pipeline.NewEntryStage(redirect.New(client, src.EnzymeBaseURL, pc.MaxHops), pc.EntryConcurrency),
		pipeline.NewSequenceStage(client, src.UniProtBaseURL, pc.SequenceConcurrency),
		pipeline.NewReactionStage(client, src.RheaBaseURL, pc.ReactionConcurrency),
	)

	zap.L().Info("pipeline initialized",
		zap.String("store", cfg.Store.Driver),
		zap.Int("max_hops", pc.MaxHops),
		zap.Duration("cache_ttl", cfg.Fetch.CacheTTL()),
	)
	return env, nil
}
