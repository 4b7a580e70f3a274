package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/enzyme-cli/internal/model"
)

// Labels and markers of the ENZYME entry page.
const (
	LabelAcceptedName     = "Accepted Name"
	LabelAlternativeNames = "Alternative Name(s)"
	LabelSwissProt        = "UniProtKB/Swiss-Prot"
	RefTypeUniProt        = "uniprot"
	DeletedEntryMarker    = "Deleted entry"
	NoNameResultsMarker   = "No ENZYME entry was found with name containing"

	transferredSelector = "body > main > div > h3 > a"
)

// EnzymePage holds the fields of one ENZYME entry page.
type EnzymePage struct {
	AcceptedName     string
	AlternativeNames []string
	Accessions       []string
	TransferredTo    string
}

// HasContent reports whether any content field was found.
func (p EnzymePage) HasContent() bool {
	return p.AcceptedName != "" || len(p.AlternativeNames) > 0 || len(p.Accessions) > 0
}

// Deleted reports whether the page marks a retired entry.
func (p EnzymePage) Deleted() bool {
	return p.AcceptedName == DeletedEntryMarker
}

// ParseEnzymePage extracts the accepted name, alternative names, Swiss-Prot
// accessions and, when present, the code the entry was transferred to.
func ParseEnzymePage(content []byte) (EnzymePage, error) {
	doc, err := Parse(content)
	if err != nil {
		return EnzymePage{}, err
	}
	page := EnzymePage{
		AcceptedName:     Section(doc, LabelAcceptedName),
		AlternativeNames: Lines(Section(doc, LabelAlternativeNames)),
		Accessions:       References(doc, LabelSwissProt, RefTypeUniProt),
	}
	if link := doc.Find(transferredSelector).First(); link.Length() > 0 {
		page.TransferredTo = strings.TrimSpace(link.Text())
	}
	return page, nil
}

// NameSearch is the parsed result table of an ENZYME name search.
type NameSearch struct {
	Matches   []model.CodeMatch
	NoResults bool
}

// ParseNameSearch reads the rows of the by-name result table. Each
// description line carries a three character prefix that is dropped.
func ParseNameSearch(content []byte, query string) (NameSearch, error) {
	doc, err := Parse(content)
	if err != nil {
		return NameSearch{}, err
	}

	var out NameSearch
	if strings.Contains(doc.Text(), NoNameResultsMarker) {
		out.NoResults = true
		return out, nil
	}

	doc.Find("table.type-1 tr").Each(func(_ int, row *goquery.Selection) {
		code := strings.TrimSpace(row.Find("td:nth-child(1) > a").First().Text())
		if code == "" {
			return
		}
		out.Matches = append(out.Matches, model.CodeMatch{
			Code:  code,
			Names: descriptionLines(row.Find("td:nth-child(2)").First().Text()),
			Query: query,
		})
	})
	return out, nil
}

func descriptionLines(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		r := []rune(line)
		if len(r) <= 3 {
			continue
		}
		if name := strings.TrimSpace(string(r[3:])); name != "" {
			names = append(names, name)
		}
	}
	return names
}

var reactionIDRe = regexp.MustCompile(`/rhea/(\d+)`)

// ParseReactionLinks returns the reaction ids linked from a search page in
// document order. The first occurrence of an id wins.
func ParseReactionLinks(content []byte) ([]string, error) {
	doc, err := Parse(content)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ids []string
	doc.Find(`a[href*="/rhea/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := reactionIDRe.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	})
	return ids, nil
}

// MissingStructure stands in for a participant without a structure string.
const MissingStructure = "$"

// ReactionPage holds the equation of a reaction detail page and one structure
// token per participant, in document order.
type ReactionPage struct {
	Equation string
	Tokens   []string
}

// ParseReactionPage extracts the equation text and the SMILES cell of every
// participant. Participants without SMILES contribute MissingStructure so
// positions stay aligned with the equation.
func ParseReactionPage(content []byte) (ReactionPage, error) {
	doc, err := Parse(content)
	if err != nil {
		return ReactionPage{}, err
	}

	page := ReactionPage{
		Equation: collapse(doc.Find("#equationtext").First().Text()),
	}
	doc.Find(".reaction-participants > ul > li.participant").Each(func(_ int, li *goquery.Selection) {
		label := li.Find("span.cell").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), "SMILES")
		}).First()
		token := strings.TrimSpace(label.NextFiltered("span.cell").Text())
		if token == "" {
			token = MissingStructure
		}
		page.Tokens = append(page.Tokens, token)
	})
	return page, nil
}
