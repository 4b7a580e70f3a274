package pipeline

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/enzyme-cli/internal/equation"
	"github.com/sells-group/enzyme-cli/internal/extract"
	"github.com/sells-group/enzyme-cli/internal/fetcher"
	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/resilience"
	"github.com/sells-group/enzyme-cli/internal/stage"
)

const (
	reactionLinkSel = `a[href*="/rhea/"]`
	equationSel     = "#equationtext"
)

// ReactionStage looks up the Rhea reactions of each accession. Both the
// search and the detail pages are rendered client side.
type ReactionStage struct {
	client      fetcher.Client
	baseURL     string
	concurrency int
}

// NewReactionStage creates a ReactionStage.
func NewReactionStage(client fetcher.Client, baseURL string, concurrency int) *ReactionStage {
	return &ReactionStage{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		concurrency: concurrency,
	}
}

// SearchTarget returns the reaction search for an accession.
func (s *ReactionStage) SearchTarget(accession string) fetcher.Target {
	return fetcher.Target{
		URL:          s.baseURL + "/rhea?query=" + url.QueryEscape("uniprot:"+accession),
		Render:       true,
		WaitFor:      reactionLinkSel,
		AllowMissing: true,
	}
}

// DetailTarget returns the detail page of one reaction.
func (s *ReactionStage) DetailTarget(id string) fetcher.Target {
	return fetcher.Target{
		URL:     s.baseURL + "/rhea/" + id,
		Render:  true,
		WaitFor: equationSel,
	}
}

// ResolveBatch collects the reactions of every accession. Each equation is
// aligned on its own; a mismatch only drops that equation's structure. A
// detail page that fails is skipped and listed in FailedReactions, and an
// accession with no readable reaction is not found.
func (s *ReactionStage) ResolveBatch(ctx context.Context, accessions []string) (model.Batch[model.ReactionRecord], error) {
	batch := stage.Run(ctx, stage.Options{Stage: model.StageReactions, Concurrency: s.concurrency}, accessions, s.resolve)
	return batch, ctx.Err()
}

func (s *ReactionStage) resolve(ctx context.Context, acc string) (*model.ReactionRecord, error) {
	log := zap.L().With(zap.String("accession", acc))

	search := s.SearchTarget(acc)
	content, err := s.client.Fetch(ctx, search)
	if err != nil {
		return nil, err
	}
	ids, err := extract.ParseReactionLinks(content)
	if err != nil {
		return nil, resilience.NewTerminalContentError(acc, err.Error())
	}
	if len(ids) == 0 {
		if !fetcher.Rendered(search, content) {
			return nil, resilience.NewTerminalContentError(acc, "no reactions listed before the render timeout")
		}
		return nil, resilience.NewTerminalContentError(acc, "no reactions listed")
	}

	rec := &model.ReactionRecord{Accession: acc}
	var lastErr error
	for _, id := range ids {
		page, err := s.fetchReaction(ctx, id)
		if err != nil {
			lastErr = err
			rec.FailedReactions = append(rec.FailedReactions, id)
			log.Warn("reactions: detail page failed", zap.String("reaction", id), zap.Error(err))
			continue
		}
		if page.Equation == "" {
			log.Debug("reactions: detail page has no equation", zap.String("reaction", id))
			continue
		}
		rx, err := equation.Reaction(id, page.Equation, page.Tokens)
		if err != nil {
			log.Debug("reactions: structure not aligned", zap.String("reaction", id), zap.Error(err))
		}
		rec.Reactions = append(rec.Reactions, rx)
	}

	if len(rec.Reactions) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, resilience.NewTerminalContentError(acc, "no reaction equations")
	}
	rec.Text, rec.Structure = equation.Combine(rec.Reactions)
	return rec, nil
}

func (s *ReactionStage) fetchReaction(ctx context.Context, id string) (extract.ReactionPage, error) {
	content, err := s.client.Fetch(ctx, s.DetailTarget(id))
	if err != nil {
		return extract.ReactionPage{}, err
	}
	return extract.ParseReactionPage(content)
}
