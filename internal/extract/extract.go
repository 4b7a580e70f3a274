// Package extract pulls structured fields out of catalog pages. Every function
// is a pure transformation of page content; nothing here performs I/O.
package extract

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// Parse builds a queryable document from raw HTML.
func Parse(content []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse html")
	}
	return doc, nil
}

// Section finds the table heading whose own text is exactly label and joins
// the text of the rows that follow it, one line per row, stopping at the next
// labeled row. It returns "" when the label is absent.
func Section(doc *goquery.Document, label string) string {
	heading := doc.Find("th").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return ownText(s) == label
	}).First()
	if heading.Length() == 0 {
		return ""
	}

	var lines []string
	heading.Parent().NextAllFiltered("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if labeled(row) {
			return false
		}
		if line := joinText(row); line != "" {
			lines = append(lines, line)
		}
		return true
	})
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// labeled reports whether row opens a new section: it carries a heading cell,
// or its first cell is a label followed by a value cell.
func labeled(row *goquery.Selection) bool {
	if row.ChildrenFiltered("th").Length() > 0 {
		return true
	}
	return row.ChildrenFiltered("td").First().NextFiltered("td").Length() > 0
}

// References finds the cell whose own text is exactly label and returns the
// trailing path segment of every link in the next cell whose href contains
// refType, in document order.
func References(doc *goquery.Document, label, refType string) []string {
	cell := doc.Find("td").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return ownText(s) == label
	}).First()
	if cell.Length() == 0 {
		return nil
	}

	var ids []string
	cell.NextAllFiltered("td").First().Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !strings.Contains(href, refType) {
			return
		}
		if id := lastSegment(href); id != "" {
			ids = append(ids, id)
		}
	})
	return ids
}

// Lines splits a section into trimmed, non-empty lines.
func Lines(section string) []string {
	var out []string
	for _, line := range strings.Split(section, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ownText concatenates the direct text children of the selection's first node.
func ownText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// joinText joins every descendant text node with single spaces.
func joinText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func lastSegment(href string) string {
	if u, err := url.Parse(href); err == nil && u.Path != "" {
		seg := path.Base(strings.TrimRight(u.Path, "/"))
		if seg != "." && seg != "/" {
			return seg
		}
		return ""
	}
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	return parts[len(parts)-1]
}
