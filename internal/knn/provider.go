package knn

import (
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/josephgoksu/promptforge/types"
)

// Provider returns the k most relevant catalog examples for a query,
// filtered by intent and complexity (spec.md §4.4).
type Provider struct {
	vectorizer *Vectorizer
	catalog    []types.FewShotExample
	vectors    [][]float64
	m          matrix
}

// NewProvider builds the fixed vocabulary and pre-computes one vector per
// catalog example at startup (spec.md §4.4 "Initialization"). Vectorization
// of individual examples is independent, so it fans out across a bounded
// worker pool (sourcegraph/conc), matching the teacher corpus's structured-
// concurrency idiom rather than a hand-rolled WaitGroup.
func NewProvider(catalog []types.FewShotExample) *Provider {
	corpus := make([]string, len(catalog))
	for i, ex := range catalog {
		corpus[i] = ex.Input
	}
	vectorizer := NewVectorizer(corpus)

	vectors := make([][]float64, len(catalog))
	p := pool.New().WithMaxGoroutines(8)
	for i, ex := range catalog {
		i, ex := i, ex
		p.Go(func() {
			vectors[i] = vectorizer.Vectorize(ex.Input)
		})
	}
	p.Wait()

	return &Provider{
		vectorizer: vectorizer,
		catalog:    catalog,
		vectors:    vectors,
		m:          buildMatrix(vectors),
	}
}

// VocabSize and CachedVectorCount document the provider's initialization
// footprint, per SPEC_FULL.md's instruction to document vocabulary size
// and cached vector count.
func (p *Provider) VocabSize() int          { return p.vectorizer.VocabSize() }
func (p *Provider) CachedVectorCount() int  { return len(p.vectors) }

func defaultK(c types.Complexity) int {
	if c == types.ComplexityComplex {
		return 5
	}
	return 3
}

// candidate pairs a catalog index with its similarity score for ranking.
type candidate struct {
	idx   int
	score float64
}

// FindExamples returns the k most relevant examples, filtered by intent and
// complexity, relaxing complexity first then intent if nothing survives
// (spec.md §4.4).
func (p *Provider) FindExamples(query string, intent types.Intent, cplx types.Complexity, k int, requireExpectedOutput bool) []types.FewShotExample {
	if k <= 0 {
		k = defaultK(cplx)
	}

	indices := p.filter(intent, cplx, requireExpectedOutput)
	if len(indices) == 0 {
		indices = p.filter(intent, "", requireExpectedOutput)
	}
	if len(indices) == 0 {
		indices = p.filter("", "", requireExpectedOutput)
	}
	if len(indices) == 0 {
		return nil
	}

	queryVec := p.vectorizer.Vectorize(query)
	candVectors := make([][]float64, len(indices))
	for i, idx := range indices {
		candVectors[i] = p.vectors[idx]
	}
	scores := cosineAgainstAll(queryVec, buildMatrix(candVectors))

	cands := make([]candidate, len(indices))
	for i, idx := range indices {
		cands[i] = candidate{idx: idx, score: scores[i]}
	}
	sort.Slice(cands, func(a, b int) bool {
		if cands[a].score != cands[b].score {
			return cands[a].score > cands[b].score
		}
		ea, eb := p.catalog[cands[a].idx], p.catalog[cands[b].idx]
		if ea.ValidatorScore != eb.ValidatorScore {
			return ea.ValidatorScore > eb.ValidatorScore
		}
		return ea.ID < eb.ID
	})

	if k > len(cands) {
		k = len(cands)
	}
	out := make([]types.FewShotExample, k)
	for i := 0; i < k; i++ {
		out[i] = p.catalog[cands[i].idx]
	}
	return out
}

// filter returns catalog indices matching intent/complexity/expected-output
// constraints. An empty intent or complexity means "no constraint" (used
// when relaxing).
func (p *Provider) filter(intent types.Intent, cplx types.Complexity, requireExpectedOutput bool) []int {
	var out []int
	for i, ex := range p.catalog {
		if intent != "" && ex.Intent != intent {
			continue
		}
		if cplx != "" && ex.Complexity != cplx {
			continue
		}
		if requireExpectedOutput && !ex.HasExpectedOutput {
			continue
		}
		out = append(out, i)
	}
	return out
}
