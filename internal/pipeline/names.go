package pipeline

import (
	"context"
	"strings"

	"github.com/sells-group/enzyme-cli/internal/extract"
	"github.com/sells-group/enzyme-cli/internal/fetcher"
	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/resilience"
	"github.com/sells-group/enzyme-cli/internal/stage"
)

// Selectors of the ENZYME by-name search form and its result table.
const (
	nameSearchPath   = "/enzyme-byname.html"
	nameInputSel     = "main div center form input:nth-of-type(1)"
	nameSubmitSel    = "main div center form input:nth-of-type(2)"
	nameResultRowSel = "table.type-1 tr"
)

// NameStage resolves enzyme names to EC numbers through the ENZYME name
// search, which only answers a submitted form and so needs the browser.
type NameStage struct {
	client      fetcher.Client
	baseURL     string
	concurrency int
}

// NewNameStage creates a NameStage.
func NewNameStage(client fetcher.Client, baseURL string, concurrency int) *NameStage {
	return &NameStage{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		concurrency: concurrency,
	}
}

// Target returns the form submission that searches for name.
func (s *NameStage) Target(name string) fetcher.Target {
	return fetcher.Target{
		URL:    s.baseURL + nameSearchPath,
		Render: true,
		Form: &fetcher.Form{
			Input:  nameInputSel,
			Value:  name,
			Submit: nameSubmitSel,
		},
		WaitFor:      nameResultRowSel,
		AllowMissing: true,
	}
}

// ResolveBatch searches every name. A name is resolved when the search lists
// at least one EC number. Codes already claimed by an earlier name (in input
// order) move to that record's Duplicate list.
func (s *NameStage) ResolveBatch(ctx context.Context, names []string) (model.Batch[model.NameResult], error) {
	batch := stage.Run(ctx, stage.Options{Stage: model.StageNames, Concurrency: s.concurrency}, names,
		func(ctx context.Context, name string) (*model.NameResult, error) {
			content, err := s.client.Fetch(ctx, s.Target(name))
			if err != nil {
				return nil, err
			}
			search, err := extract.ParseNameSearch(content, name)
			if err != nil {
				return nil, resilience.NewTerminalContentError(name, err.Error())
			}
			if search.NoResults || len(search.Matches) == 0 {
				return nil, resilience.NewTerminalContentError(name, "no enzyme matches the name")
			}
			return &model.NameResult{Name: name, Matches: search.Matches}, nil
		})
	if err := ctx.Err(); err != nil {
		return batch, err
	}

	claimed := stage.NewSet()
	for i := range batch.Records {
		rec := &batch.Records[i]
		var fresh []model.CodeMatch
		for _, m := range rec.Matches {
			if claimed.Claim(m.Code) {
				fresh = append(fresh, m)
			} else {
				rec.Duplicate = append(rec.Duplicate, m.Code)
			}
		}
		rec.Matches = fresh
	}
	return batch, nil
}

// Codes flattens name results into the EC numbers the entry stage resolves.
func Codes(results []model.NameResult) []string {
	var codes []string
	for _, r := range results {
		for _, m := range r.Matches {
			codes = append(codes, m.Code)
		}
	}
	return stage.Dedupe(codes)
}
