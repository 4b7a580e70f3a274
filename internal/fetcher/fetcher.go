// Package fetcher performs single-attempt page fetches over plain HTTP or a
// headless browser. Retries live in the Retrying decorator, not in the clients.
package fetcher

import (
	"context"
	"fmt"

	"github.com/sells-group/enzyme-cli/internal/resilience"
)

// Client fetches one target and returns its raw content.
type Client interface {
	Fetch(ctx context.Context, target Target) ([]byte, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, target Target) ([]byte, error)

// Fetch calls f.
func (f ClientFunc) Fetch(ctx context.Context, target Target) ([]byte, error) {
	return f(ctx, target)
}

// Target describes a page to fetch. Render selects the headless browser;
// everything else is fetched with a plain GET.
type Target struct {
	URL string

	// Render requests a browser navigation instead of a plain GET.
	Render bool

	// Form, when set, is filled and submitted after navigation.
	Form *Form

	// WaitFor is a CSS selector the browser waits for before capturing the page.
	WaitFor string

	// AllowMissing returns the rendered page instead of a timeout error when
	// WaitFor never appears (e.g. a search with no results).
	AllowMissing bool
}

// Form is a single-input search form.
type Form struct {
	Input  string // CSS selector of the text input
	Value  string
	Submit string // CSS selector of the submit control
}

// Kind classifies a fetch failure.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindHTTP    Kind = "http"
	KindNetwork Kind = "network"
)

// FetchError is the typed failure returned by every Client.
type FetchError struct {
	Kind   Kind
	Status int
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindHTTP:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the same target may succeed.
func (e *FetchError) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork:
		return true
	case KindHTTP:
		return resilience.IsTransientHTTPStatus(e.Status)
	default:
		return false
	}
}
