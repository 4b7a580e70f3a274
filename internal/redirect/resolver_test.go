package redirect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enzyme-cli/internal/extract"
	"github.com/sells-group/enzyme-cli/internal/fetcher"
	"github.com/sells-group/enzyme-cli/internal/resilience"
)

const base = "https://enzyme.test"

func entryPage(name string, accessions ...string) string {
	var links strings.Builder
	for _, acc := range accessions {
		fmt.Fprintf(&links, `<a href="https://www.uniprot.org/uniprot/%s">%s</a>; `, acc, acc)
	}
	return fmt.Sprintf(`<html><body><main><div><table>
<tr><th>Accepted Name</th></tr><tr><td>%s</td></tr>
<tr><td>UniProtKB/Swiss-Prot</td><td>%s</td></tr>
</table></div></main></body></html>`, name, links.String())
}

func transferPage(to string) string {
	return fmt.Sprintf(`<html><body><main><div><h3>Transferred entry: <a href="/EC/%s">%s</a></h3></div></main></body></html>`, to, to)
}

// site serves pages keyed by code and records every fetched code.
type site struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (s *site) client() fetcher.Client {
	return fetcher.ClientFunc(func(_ context.Context, target fetcher.Target) ([]byte, error) {
		code := strings.TrimPrefix(target.URL, base+"/EC/")
		s.mu.Lock()
		s.fetched = append(s.fetched, code)
		s.mu.Unlock()
		page, ok := s.pages[code]
		if !ok {
			return nil, &fetcher.FetchError{Kind: fetcher.KindHTTP, Status: 404, URL: target.URL}
		}
		return []byte(page), nil
	})
}

func TestResolve_Found(t *testing.T) {
	s := &site{pages: map[string]string{"3.5.1.5": entryPage("urease", "P07374", "P41020")}}
	r := New(s.client(), base+"/", 0)

	entry, err := r.Resolve(context.Background(), "3.5.1.5")
	require.NoError(t, err)
	assert.Equal(t, "3.5.1.5", entry.Code)
	assert.Equal(t, "3.5.1.5", entry.ResolvedCode)
	assert.False(t, entry.Transferred())
	assert.Equal(t, "urease", entry.AcceptedName)
	assert.Equal(t, []string{"P07374", "P41020"}, entry.Accessions)
	assert.Equal(t, DefaultMaxHops, r.MaxHops())
}

func TestResolve_FollowsTransfer(t *testing.T) {
	s := &site{pages: map[string]string{
		"1.1.1.5":   transferPage("1.1.1.303"),
		"1.1.1.303": entryPage("diacetyl reductase", "Q9ZNN8"),
	}}
	r := New(s.client(), base, 5)

	entry, err := r.Resolve(context.Background(), "1.1.1.5")
	require.NoError(t, err)
	assert.Equal(t, "1.1.1.5", entry.Code, "origin identifier is kept")
	assert.Equal(t, "1.1.1.303", entry.ResolvedCode)
	assert.Equal(t, []string{"1.1.1.5", "1.1.1.303"}, entry.Chain)
	assert.True(t, entry.Transferred())
}

func TestResolve_TwoCycleIsNotFoundForOrigin(t *testing.T) {
	s := &site{pages: map[string]string{
		"A": transferPage("B"),
		"B": transferPage("A"),
	}}
	r := New(s.client(), base, 5)

	entry, err := r.Resolve(context.Background(), "A")
	assert.Nil(t, entry)

	var loop *resilience.RedirectionLoopError
	require.True(t, errors.As(err, &loop), "got %v", err)
	assert.Equal(t, "A", loop.ID)
	assert.Equal(t, []string{"A", "B", "A"}, loop.Chain)
	assert.Equal(t, []string{"A", "B"}, s.fetched, "a visited code is never refetched")
}

func TestResolve_HopLimit(t *testing.T) {
	s := &site{pages: map[string]string{
		"c0": transferPage("c1"),
		"c1": transferPage("c2"),
		"c2": transferPage("c3"),
		"c3": entryPage("end"),
	}}

	_, err := New(s.client(), base, 2).Resolve(context.Background(), "c0")
	var loop *resilience.RedirectionLoopError
	require.True(t, errors.As(err, &loop))
	assert.Equal(t, "c0", loop.ID)
	assert.Equal(t, 2, loop.Limit)

	entry, err := New(s.client(), base, 3).Resolve(context.Background(), "c0")
	require.NoError(t, err)
	assert.Equal(t, "c3", entry.ResolvedCode)
}

func TestResolve_Deleted(t *testing.T) {
	s := &site{pages: map[string]string{"1.1.1.74": entryPage(extract.DeletedEntryMarker)}}

	_, err := New(s.client(), base, 5).Resolve(context.Background(), "1.1.1.74")
	var term *resilience.TerminalContentError
	require.True(t, errors.As(err, &term))
	assert.Equal(t, "1.1.1.74", term.ID)
	assert.Equal(t, "deleted entry", term.Reason)
}

func TestResolve_EmptyPage(t *testing.T) {
	s := &site{pages: map[string]string{"9.9.9.9": `<html><body><p>nothing</p></body></html>`}}

	_, err := New(s.client(), base, 5).Resolve(context.Background(), "9.9.9.9")
	assert.Equal(t, resilience.ErrorTypeTerminal, resilience.ClassifyError(err))
}

func TestResolve_FetchErrorPassesThrough(t *testing.T) {
	s := &site{pages: map[string]string{"A": transferPage("missing")}}

	_, err := New(s.client(), base, 5).Resolve(context.Background(), "A")
	var fe *fetcher.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 404, fe.Status)
	assert.False(t, resilience.IsTransient(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		page extract.EnzymePage
		want State
	}{
		{"found", extract.EnzymePage{AcceptedName: "urease"}, Found},
		{"accessions only", extract.EnzymePage{Accessions: []string{"P1"}}, Found},
		{"deleted", extract.EnzymePage{AcceptedName: extract.DeletedEntryMarker}, Deleted},
		{"transferred", extract.EnzymePage{TransferredTo: "1.1.1.2"}, Transferred},
		{"content beats transfer", extract.EnzymePage{AcceptedName: "x", TransferredTo: "y"}, Found},
		{"empty", extract.EnzymePage{}, NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.page))
			assert.NotEqual(t, "unknown", tt.want.String())
		})
	}
}
