package pipeline

import (
	"context"
	"net/url"
	"strings"

	"github.com/sells-group/enzyme-cli/internal/extract"
	"github.com/sells-group/enzyme-cli/internal/fetcher"
	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/resilience"
	"github.com/sells-group/enzyme-cli/internal/stage"
)

// SequenceStage fetches UniProtKB records for accessions over the REST API.
type SequenceStage struct {
	client      fetcher.Client
	baseURL     string
	concurrency int
}

// NewSequenceStage creates a SequenceStage.
func NewSequenceStage(client fetcher.Client, baseURL string, concurrency int) *SequenceStage {
	return &SequenceStage{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		concurrency: concurrency,
	}
}

// URL returns the TSV query for one accession.
func (s *SequenceStage) URL(accession string) string {
	q := url.Values{}
	q.Set("accessions", accession)
	q.Set("fields", strings.Join(extract.UniProtFields, ","))
	q.Set("format", "tsv")
	return s.baseURL + "/uniprotkb/accessions?" + q.Encode()
}

// ResolveBatch fetches every accession. When the response holds several
// rows the one whose Entry matches the accession wins, else the first.
func (s *SequenceStage) ResolveBatch(ctx context.Context, accessions []string) (model.Batch[model.SequenceRecord], error) {
	batch := stage.Run(ctx, stage.Options{Stage: model.StageSequences, Concurrency: s.concurrency}, accessions,
		func(ctx context.Context, acc string) (*model.SequenceRecord, error) {
			content, err := s.client.Fetch(ctx, fetcher.Target{URL: s.URL(acc)})
			if err != nil {
				return nil, err
			}
			records, err := extract.ParseUniProtTSV(content)
			if err != nil {
				return nil, resilience.NewTerminalContentError(acc, err.Error())
			}
			if len(records) == 0 {
				return nil, resilience.NewTerminalContentError(acc, "no uniprot record")
			}
			for i := range records {
				if records[i].Accession == acc {
					return &records[i], nil
				}
			}
			return &records[0], nil
		})
	return batch, ctx.Err()
}
