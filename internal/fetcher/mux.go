package fetcher

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enzyme-cli/internal/resilience"
)

// Mux routes rendered targets to the browser and the rest to plain HTTP.
type Mux struct {
	HTTP    Client
	Browser Client
}

// Fetch dispatches target to the matching driver.
func (m *Mux) Fetch(ctx context.Context, target Target) ([]byte, error) {
	if target.Render {
		if m.Browser == nil {
			return nil, eris.Errorf("fetch: no browser configured for %s", target.URL)
		}
		return m.Browser.Fetch(ctx, target)
	}
	if m.HTTP == nil {
		return nil, eris.Errorf("fetch: no http client configured for %s", target.URL)
	}
	return m.HTTP.Fetch(ctx, target)
}

// Retrying retries transient failures of the wrapped client with a fixed
// delay between attempts.
type Retrying struct {
	next Client
	cfg  resilience.RetryConfig
}

// WithRetry wraps next with the retry policy cfg.
func WithRetry(next Client, cfg resilience.RetryConfig) *Retrying {
	return &Retrying{next: next, cfg: cfg}
}

// Fetch calls the wrapped client until it succeeds, fails permanently, or
// runs out of attempts. A transient failure that outlives every attempt comes
// back as a *resilience.TransientError carrying the last HTTP status.
func (r *Retrying) Fetch(ctx context.Context, target Target) ([]byte, error) {
	cfg := r.cfg
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("fetch", target.URL)
	}
	content, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return r.next.Fetch(ctx, target)
	})
	if err == nil || ctx.Err() != nil || !resilience.IsTransient(err) {
		return content, err
	}
	var te *resilience.TransientError
	if errors.As(err, &te) {
		return nil, err
	}
	status := 0
	var fe *FetchError
	if errors.As(err, &fe) {
		status = fe.Status
	}
	return nil, resilience.NewTransientError(err, status)
}
