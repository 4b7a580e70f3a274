package model

// Reaction is one equation scraped from a reaction detail page. Structure is
// nil when the participant tokens could not be aligned to the equation; the
// equation text is kept either way.
type Reaction struct {
	ID        string  `json:"id"`
	Equation  string  `json:"equation"`
	Structure *string `json:"structure"`
}

// Aligned reports whether the reaction carries a structure string.
func (r Reaction) Aligned() bool {
	return r.Structure != nil
}

// ReactionRecord collects every reaction found for one accession.
// Text joins all equations; Structure joins only the aligned ones.
// FailedReactions lists the reaction ids whose detail page could not be read.
type ReactionRecord struct {
	Accession       string     `json:"accession"`
	Reactions       []Reaction `json:"reactions"`
	Text            string     `json:"text_reaction"`
	Structure       string     `json:"smiles_reaction"`
	FailedReactions []string   `json:"failed_reactions,omitempty"`
}
