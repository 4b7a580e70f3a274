// Package redirect resolves EC codes to catalog entries, following
// transferred entries through a bounded chain of hops.
package redirect

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enzyme-cli/internal/extract"
	"github.com/sells-group/enzyme-cli/internal/fetcher"
	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/resilience"
)

// DefaultMaxHops bounds how many transfers are followed from one code.
const DefaultMaxHops = 5

// State is a step of the resolution state machine.
type State int

const (
	Fetching State = iota
	Found
	Deleted
	Transferred
	NotFound
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Found:
		return "found"
	case Deleted:
		return "deleted"
	case Transferred:
		return "transferred"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Classify decides the state a parsed page puts the resolver in. Content
// wins over a transfer link; a page with neither is NotFound.
func Classify(page extract.EnzymePage) State {
	switch {
	case page.Deleted():
		return Deleted
	case page.HasContent():
		return Found
	case page.TransferredTo != "":
		return Transferred
	default:
		return NotFound
	}
}

// Resolver fetches ENZYME entry pages and chases transfers.
type Resolver struct {
	client  fetcher.Client
	baseURL string
	maxHops int
}

// New creates a Resolver. A non-positive maxHops selects DefaultMaxHops.
func New(client fetcher.Client, baseURL string, maxHops int) *Resolver {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	return &Resolver{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxHops: maxHops,
	}
}

// MaxHops returns the transfer limit in effect.
func (r *Resolver) MaxHops() int { return r.maxHops }

// URL returns the entry page address for code.
func (r *Resolver) URL(code string) string {
	return r.baseURL + "/EC/" + code
}

// Resolve follows code until it reaches an entry with content. The returned
// entry keeps code as its identifier whatever the number of hops. Deleted
// entries and pages without content yield a TerminalContentError; a cycle or
// a chain longer than the hop limit yields a RedirectionLoopError for code.
func (r *Resolver) Resolve(ctx context.Context, code string) (*model.EnzymeEntry, error) {
	log := zap.L().With(zap.String("ec_number", code))

	visited := make(map[string]bool)
	var chain []string
	current := code

	for {
		if visited[current] {
			return nil, &resilience.RedirectionLoopError{ID: code, Chain: append(chain, current), Limit: r.maxHops}
		}
		visited[current] = true
		chain = append(chain, current)

		content, err := r.client.Fetch(ctx, fetcher.Target{URL: r.URL(current)})
		if err != nil {
			return nil, eris.Wrapf(err, "redirect: fetch %s", current)
		}
		page, err := extract.ParseEnzymePage(content)
		if err != nil {
			return nil, resilience.NewTerminalContentError(code, err.Error())
		}

		state := Classify(page)
		log.Debug("redirect: step",
			zap.String("current", current),
			zap.Stringer("state", state),
			zap.Int("hop", len(chain)-1),
		)

		switch state {
		case Found:
			return &model.EnzymeEntry{
				Code:             code,
				ResolvedCode:     current,
				Chain:            chain,
				AcceptedName:     page.AcceptedName,
				AlternativeNames: page.AlternativeNames,
				Accessions:       page.Accessions,
			}, nil
		case Deleted:
			return nil, resilience.NewTerminalContentError(code, "deleted entry")
		case Transferred:
			if len(chain) > r.maxHops {
				return nil, &resilience.RedirectionLoopError{
					ID:    code,
					Chain: append(chain, page.TransferredTo),
					Limit: r.maxHops,
				}
			}
			current = page.TransferredTo
		default:
			return nil, resilience.NewTerminalContentError(code, "entry page has no content")
		}
	}
}
