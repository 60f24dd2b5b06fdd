package assembler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// capitalizedTokenPattern and numericConstantPattern match tokens the RaR
// expansion must never rephrase: capitalized identifiers (proper nouns,
// acronyms, named providers) and numeric constants, with or without an
// attached unit (spec.md §4.6).
var (
	capitalizedTokenPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]*\b`)
	numericConstantPattern  = regexp.MustCompile(`\b\d+(?:\.\d+)?[A-Za-z%]*\b`)
)

// ExtractNonNegotiableTokens returns the deduplicated set of tokens from
// idea that must be carried verbatim into the Requirements section:
// numeric constants, named providers/acronyms, and items from explicit
// enumerations (e.g. "Admin>User>Guest" splits into Admin, User, Guest via
// the capitalized-token pattern, since ">" is not a word character).
func ExtractNonNegotiableTokens(idea string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		out = append(out, tok)
	}
	for _, m := range capitalizedTokenPattern.FindAllString(idea, -1) {
		add(m)
	}
	for _, m := range numericConstantPattern.FindAllString(idea, -1) {
		add(m)
	}
	sort.Strings(out)
	return out
}

// BuildRaR builds the "Understanding" section (an expansion of the
// request) and the "Requirements (NON-NEGOTIABLE)" section that carries
// the non-negotiable tokens verbatim (spec.md §4.6). Applied only when
// complexity = COMPLEX.
func BuildRaR(idea string) (understanding, requirements string) {
	tokens := ExtractNonNegotiableTokens(idea)

	var sb strings.Builder
	sb.WriteString("## Understanding\n")
	sb.WriteString(fmt.Sprintf("The request expands on: %s\n", idea))
	understanding = sb.String()

	var rb strings.Builder
	rb.WriteString("## Requirements (NON-NEGOTIABLE)\n")
	if len(tokens) == 0 {
		rb.WriteString(idea)
	} else {
		for _, t := range tokens {
			rb.WriteString(fmt.Sprintf("- %s\n", t))
		}
	}
	requirements = rb.String()
	return understanding, requirements
}
