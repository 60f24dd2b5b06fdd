// Package knn implements the fixed-vocabulary character-bigram vectorizer
// and KNN search over the curated few-shot catalog (spec.md §4.4). The
// cosine-similarity batch computation is grounded on
// internal/knowledge/embed.go's CosineSimilarity (hand-rolled dot-product
// loop); no third-party numerical/vector library appears in any complete
// example repo, so the "single fused computation" spec.md asks for is
// hand-rolled here rather than importing an ungrounded dependency such as
// gonum (see DESIGN.md).
package knn

import (
	"sort"
	"strings"
)

// Vectorizer is a fixed-vocabulary character-bigram vectorizer. The
// vocabulary is built once (from the catalog corpus) and never mutated
// afterward (spec.md §4.4 "Initialization").
type Vectorizer struct {
	index map[string]int
}

// NewVectorizer builds the vocabulary from the given corpus of texts,
// assigning each distinct character bigram a stable column index in
// sorted bigram order, for determinism across runs.
func NewVectorizer(corpus []string) *Vectorizer {
	seen := make(map[string]struct{})
	for _, text := range corpus {
		for _, bg := range bigrams(text) {
			seen[bg] = struct{}{}
		}
	}
	all := make([]string, 0, len(seen))
	for bg := range seen {
		all = append(all, bg)
	}
	sort.Strings(all)
	index := make(map[string]int, len(all))
	for i, bg := range all {
		index[bg] = i
	}
	return &Vectorizer{index: index}
}

// VocabSize returns the number of distinct bigrams in the fixed vocabulary.
func (v *Vectorizer) VocabSize() int { return len(v.index) }

func bigrams(s string) []string {
	r := []rune(strings.ToLower(s))
	if len(r) < 2 {
		if len(r) == 1 {
			return []string{string(r)}
		}
		return nil
	}
	out := make([]string, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		out = append(out, string(r[i:i+2]))
	}
	return out
}

// Vectorize projects text into the fixed vocabulary's dense vector space.
// Bigrams outside the fixed vocabulary are ignored (out-of-vocabulary),
// matching the "fixed-vocabulary" requirement.
func (v *Vectorizer) Vectorize(text string) []float64 {
	vec := make([]float64, len(v.index))
	for _, bg := range bigrams(text) {
		if idx, ok := v.index[bg]; ok {
			vec[idx]++
		}
	}
	return vec
}
