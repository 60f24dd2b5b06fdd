package knn

import (
	"testing"

	"github.com/josephgoksu/promptforge/types"
)

func sampleCatalog() []types.FewShotExample {
	return []types.FewShotExample{
		{ID: "a1", Input: "fix a null pointer exception in the handler", Intent: types.IntentDebug, Complexity: types.ComplexitySimple, ValidatorScore: 0.9, HasExpectedOutput: true},
		{ID: "a2", Input: "fix an off by one error in the loop", Intent: types.IntentDebug, Complexity: types.ComplexitySimple, ValidatorScore: 0.5, HasExpectedOutput: false},
		{ID: "b1", Input: "refactor this class for readability", Intent: types.IntentRefactor, Complexity: types.ComplexityModerate, ValidatorScore: 0.8, HasExpectedOutput: true},
		{ID: "c1", Input: "write a function to sort a list", Intent: types.IntentGenerate, Complexity: types.ComplexitySimple, ValidatorScore: 0.7, HasExpectedOutput: false},
	}
}

func TestFindExamplesFilterAndRank(t *testing.T) {
	p := NewProvider(sampleCatalog())
	out := p.FindExamples("fix a null pointer bug", types.IntentDebug, types.ComplexitySimple, 2, false)
	if len(out) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(out))
	}
	if out[0].ID != "a1" {
		t.Errorf("expected most similar debug example first, got %s", out[0].ID)
	}
}

func TestFindExamplesRequireExpectedOutput(t *testing.T) {
	p := NewProvider(sampleCatalog())
	out := p.FindExamples("refactor the nested function", types.IntentRefactor, types.ComplexityModerate, 3, true)
	for _, ex := range out {
		if !ex.HasExpectedOutput {
			t.Errorf("expected only has_expected_output examples, got %+v", ex)
		}
	}
}

func TestFindExamplesRelaxation(t *testing.T) {
	p := NewProvider(sampleCatalog())
	// No REFACTOR + COMPLEX examples exist; should relax complexity then
	// intent and still return something.
	out := p.FindExamples("refactor something complex", types.IntentRefactor, types.ComplexityComplex, 1, false)
	if len(out) == 0 {
		t.Fatal("expected relaxed results, got none")
	}
}

func TestVocabSizeAndCacheCount(t *testing.T) {
	p := NewProvider(sampleCatalog())
	if p.VocabSize() == 0 {
		t.Error("expected non-zero vocabulary size")
	}
	if p.CachedVectorCount() != 4 {
		t.Errorf("expected 4 cached vectors, got %d", p.CachedVectorCount())
	}
}
