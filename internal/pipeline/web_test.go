package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/enzyme-cli/internal/fetcher"
	"github.com/sells-group/enzyme-cli/internal/redirect"
	"github.com/sells-group/enzyme-cli/internal/store"
)

const (
	enzymeBase  = "https://enzyme.test"
	uniprotBase = "https://uniprot.test"
	rheaBase    = "https://rhea.test"
)

// web is an in-memory stand-in for the three catalogs.
type web struct {
	mu      sync.Mutex
	fetches map[string]int

	searches  map[string][]string // name -> codes
	entries   map[string]string   // code -> page
	uniprot   map[string]string   // accession -> tsv row
	rheaLinks map[string][]string // accession -> reaction ids
	reactions map[string]string   // reaction id -> page
	failing   map[string]error    // url -> error
}

func (w *web) Fetch(_ context.Context, target fetcher.Target) ([]byte, error) {
	w.mu.Lock()
	if w.fetches == nil {
		w.fetches = make(map[string]int)
	}
	w.fetches[target.URL]++
	w.mu.Unlock()

	if err, ok := w.failing[target.URL]; ok {
		return nil, err
	}
	u, err := url.Parse(target.URL)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(u.Path, nameSearchPath):
		return []byte(nameSearchHTML(target.Form.Value, w.searches[target.Form.Value])), nil
	case strings.HasPrefix(u.Path, "/EC/"):
		page, ok := w.entries[strings.TrimPrefix(u.Path, "/EC/")]
		if !ok {
			return nil, &fetcher.FetchError{Kind: fetcher.KindHTTP, Status: 404, URL: target.URL}
		}
		return []byte(page), nil
	case u.Path == "/uniprotkb/accessions":
		return []byte(uniprotHeader + w.uniprot[u.Query().Get("accessions")]), nil
	case u.Path == "/rhea":
		acc := strings.TrimPrefix(u.Query().Get("query"), "uniprot:")
		return []byte(rheaSearchHTML(w.rheaLinks[acc])), nil
	case strings.HasPrefix(u.Path, "/rhea/"):
		page, ok := w.reactions[strings.TrimPrefix(u.Path, "/rhea/")]
		if !ok {
			return nil, &fetcher.FetchError{Kind: fetcher.KindHTTP, Status: 404, URL: target.URL}
		}
		return []byte(page), nil
	}
	return nil, &fetcher.FetchError{Kind: fetcher.KindHTTP, Status: 404, URL: target.URL}
}

func (w *web) count(rawURL string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fetches[rawURL]
}

func nameSearchHTML(name string, codes []string) string {
	if len(codes) == 0 {
		return fmt.Sprintf(`<html><body><main><div><p>No ENZYME entry was found with name containing '%s'.</p></div></main></body></html>`, name)
	}
	var rows strings.Builder
	for _, c := range codes {
		fmt.Fprintf(&rows, "<tr><td><a href=\"/EC/%s\">%s</a></td><td>\n - %s\n</td></tr>\n", c, c, name)
	}
	return `<html><body><main><div><table class="type-1"><tr><th>EC</th><th>Name</th></tr>` + rows.String() + `</table></div></main></body></html>`
}

func entryHTML(name string, accessions ...string) string {
	var links strings.Builder
	for _, acc := range accessions {
		fmt.Fprintf(&links, `<a href="https://www.uniprot.org/uniprot/%s">%s</a>; `, acc, acc)
	}
	return fmt.Sprintf(`<html><body><main><div><table>
<tr><th>Accepted Name</th></tr><tr><td>%s</td></tr>
<tr><td>UniProtKB/Swiss-Prot</td><td>%s</td></tr>
</table></div></main></body></html>`, name, links.String())
}

func transferHTML(to string) string {
	return fmt.Sprintf(`<html><body><main><div><h3>Transferred entry: <a href="/EC/%s">%s</a></h3></div></main></body></html>`, to, to)
}

const uniprotHeader = "Entry\tEntry Name\tProtein names\tGene Names\tEC number\tOrganism\tOrganism (ID)\tSequence\tLength\tRefSeq\tReviewed\n"

func uniprotRow(acc, name, organism, seq string) string {
	return fmt.Sprintf("%s\t%s_X\t%s\t\t\t%s\t1\t%s\t%d\t\treviewed\n", acc, acc, name, organism, seq, len(seq))
}

func rheaSearchHTML(ids []string) string {
	var links strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&links, `<a href="/rhea/%s">RHEA:%s</a>`, id, id)
	}
	return `<html><body>` + links.String() + `</body></html>`
}

func reactionHTML(eq string, smiles ...string) string {
	var items strings.Builder
	for _, s := range smiles {
		if s == "" {
			items.WriteString(`<li class="participant"><span class="cell">Name</span><span class="cell">x</span></li>`)
			continue
		}
		fmt.Fprintf(&items, `<li class="participant"><span class="cell">SMILES</span><span class="cell">%s</span></li>`, s)
	}
	return fmt.Sprintf(`<html><body><div id="equationtext">%s</div><div class="reaction-participants"><ul>%s</ul></div></body></html>`, eq, items.String())
}

// ureaseWeb is the urease scenario: one name resolving to a code with two
// accessions, a second name whose code was transferred, and a name that
// matches nothing.
func ureaseWeb() *web {
	return &web{
		searches: map[string][]string{
			"urease":          {"3.5.1.5"},
			"ureidoglycolase": {"3.5.1.116"},
		},
		entries: map[string]string{
			"3.5.1.5":   entryHTML("urease", "P07374", "P41020"),
			"3.5.1.116": transferHTML("3.5.3.19"),
			"3.5.3.19":  entryHTML("ureidoglycolate lyase", "P77425"),
		},
		uniprot: map[string]string{
			"P07374": uniprotRow("P07374", "Urease", "Canavalia ensiformis", "MKLSPREVEK"),
			"P77425": uniprotRow("P77425", "Ureidoglycolate lyase", "Escherichia coli", "MKLQVLPLSQ"),
		},
		rheaLinks: map[string][]string{
			"P07374": {"20557", "10000"},
		},
		reactions: map[string]string{
			"20557": reactionHTML("urea + H2O + 2 H<sup>+</sup> = CO2 + 2 NH4<sup>+</sup>",
				"NC(N)=O", "[H]O[H]", "[H+]", "O=C=O", "[H][N+]([H])([H])[H]"),
			"10000": reactionHTML("A + B = C", "s1", "s2"),
		},
	}
}

var keys = store.Keys{Prefix: "test"}

func newTestPipeline(w fetcher.Client, st store.Store) *Pipeline {
	return New(st, keys,
		NewNameStage(w, enzymeBase, 2),
		NewEntryStage(redirect.New(w, enzymeBase, 5), 4),
		NewSequenceStage(w, uniprotBase, 4),
		NewReactionStage(w, rheaBase, 2),
	)
}

// mockClient is a testify mock of fetcher.Client.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) Fetch(ctx context.Context, target fetcher.Target) ([]byte, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
