// Package equation aligns reaction equations with per-participant structure
// tokens into reaction strings of the form "r1.r2>>p1.p2".
package equation

import (
	"strings"

	"github.com/sells-group/enzyme-cli/internal/model"
	"github.com/sells-group/enzyme-cli/internal/resilience"
)

const (
	sideSep        = "="
	participantSep = " + "
	groupSep       = "."
	arrow          = ">>"
	recordSep      = "; "
)

// Equation is a parsed reaction equation.
type Equation struct {
	Text      string
	Reactants []string
	Products  []string
}

// Participants returns the number of participants on both sides.
func (e Equation) Participants() int {
	return len(e.Reactants) + len(e.Products)
}

// Parse splits an equation into its reactant and product participants.
// An equation with no "=", more than one "=", or an empty side is rejected.
func Parse(text string) (Equation, error) {
	text = strings.TrimSpace(text)
	sides := strings.Split(text, sideSep)
	switch {
	case len(sides) < 2:
		return Equation{}, &resilience.AlignmentMismatchError{Equation: text, Reason: "no '=' separator"}
	case len(sides) > 2:
		return Equation{}, &resilience.AlignmentMismatchError{Equation: text, Reason: "more than one '=' separator"}
	}

	eq := Equation{
		Text:      text,
		Reactants: participants(sides[0]),
		Products:  participants(sides[1]),
	}
	if len(eq.Reactants) == 0 || len(eq.Products) == 0 {
		return Equation{}, &resilience.AlignmentMismatchError{Equation: text, Reason: "empty side"}
	}
	return eq, nil
}

func participants(side string) []string {
	side = strings.TrimSpace(side)
	if side == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(side, participantSep) {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Align joins the reactant tokens and the product tokens with "." and the two
// groups with ">>". The token count must equal the participant count exactly;
// tokens are never truncated or padded.
func Align(eq Equation, tokens []string) (string, error) {
	r, p := len(eq.Reactants), len(eq.Products)
	if len(tokens) != r+p {
		return "", &resilience.AlignmentMismatchError{Equation: eq.Text, Tokens: len(tokens), Expected: r + p}
	}
	return strings.Join(tokens[:r], groupSep) + arrow + strings.Join(tokens[r:], groupSep), nil
}

// Reaction parses and aligns one equation. The equation text is always kept;
// Structure is nil when alignment fails, and the error says why.
func Reaction(id, text string, tokens []string) (model.Reaction, error) {
	rx := model.Reaction{ID: id, Equation: strings.TrimSpace(text)}
	eq, err := Parse(text)
	if err != nil {
		return rx, err
	}
	aligned, err := Align(eq, tokens)
	if err != nil {
		return rx, err
	}
	rx.Structure = &aligned
	return rx, nil
}

// Combine builds the record-level fields from independently aligned
// reactions: every equation goes into text, only aligned structures into
// structure, both separated by "; ".
func Combine(reactions []model.Reaction) (text, structure string) {
	var texts, structures []string
	for _, rx := range reactions {
		if rx.Equation != "" {
			texts = append(texts, rx.Equation)
		}
		if rx.Structure != nil {
			structures = append(structures, *rx.Structure)
		}
	}
	return strings.Join(texts, recordSep), strings.Join(structures, recordSep)
}
