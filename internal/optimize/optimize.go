// Package optimize implements the intent-routed optimization stage of
// spec.md §4.7: Reflexion for DEBUG, OPRO for REFACTOR/GENERATE/EXPLAIN,
// and an identity degenerate mode when no LLM is available. Both real
// optimizers sit behind one small interface with no shared base class,
// per spec.md §9's "two optimizer variants behind one small interface"
// re-architecture note.
//
// Grounded on internal/app/plan.go's bounded-iteration trajectory loop
// (ClarifyOptions.AutoAnswer driving a capped refinement cycle) and
// internal/knowledge/reranker.go's deterministic-scoring-with-fallback
// idiom (score, compare, keep the best, never block on a single failure).
package optimize

import (
	"context"
	"regexp"

	"github.com/josephgoksu/promptforge/internal/errors"
	"github.com/josephgoksu/promptforge/internal/llmclient"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/types"
)

// Optimizer is the shared contract for both strategies (spec.md §9).
type Optimizer interface {
	Optimize(ctx context.Context, transport llm.Transport, system, user string, req types.AnalyzedRequest, examples []types.FewShotExample, opts llmclient.Options) (types.ImprovementResult, *errors.Error)
}

// Select returns the optimizer strategy for an intent (spec.md §4.7).
func Select(intent types.Intent) Optimizer {
	if intent == types.IntentDebug {
		return ReflexionOptimizer{}
	}
	return OPROOptimizer{}
}

// Identity degenerates to assemble-and-return-as-prompt with no LLM call,
// used when no transport is configured
// (spec.md §4.7, last-resort fallback only).
func Identity(req types.AnalyzedRequest, assembledUser string) types.ImprovementResult {
	return types.ImprovementResult{
		ImprovedPrompt: assembledUser,
		Confidence:     req.AnalysisConfidence,
		Meta: types.ResultMeta{
			Backend: "identity",
			Attempt: 0,
		},
	}
}

// candidate is one generated attempt plus its outcome, used by both
// optimizers to build trajectories and pick a winner.
type candidate struct {
	result types.ImprovementResult
	err    *errors.Error
}

func (c candidate) ok() bool { return c.err == nil }

// generate runs one llmclient.Generate call, capturing a failure as a
// zero-scoring candidate instead of aborting the optimization loop — the
// optimizer's own iteration budget, not llmclient's internal repair
// retry, governs how many attempts are made.
func generate(ctx context.Context, transport llm.Transport, system, user string, opts llmclient.Options) candidate {
	result, err := llmclient.Generate(ctx, transport, system, user, opts)
	return candidate{result: result, err: err}
}

// diagnosis renders a short, human-readable reason a candidate needs
// another iteration, used to build retry/meta prompts.
func diagnosis(c candidate, extra string) string {
	if c.err != nil {
		return c.err.Message
	}
	if extra != "" {
		return extra
	}
	return "candidate accepted"
}

var structuralHeadingPattern = regexp.MustCompile(`(?m)^[A-Z][A-Za-z ]{2,40}:\s*$`)

// hasStructuralSections reports whether prompt contains at least one
// labeled section heading (e.g. "Context:", "Requirements:"), the
// "structural bonus" signal spec.md §4.7 names for OPRO scoring.
func hasStructuralSections(prompt string) bool {
	return structuralHeadingPattern.MatchString(prompt)
}

// fewShotAdherence reports whether prompt's length roughly matches the
// scale of the retrieved few-shot outputs, a deterministic proxy for
// "followed the shape of the examples it was given" (spec.md §4.7's
// "few-shot adherence bonus") that needs no further LLM call to compute.
func fewShotAdherence(prompt string, examples []types.FewShotExample) bool {
	if len(examples) == 0 {
		return false
	}
	n := len(prompt)
	if n == 0 {
		return false
	}
	for _, ex := range examples {
		m := len(ex.Output)
		if m == 0 {
			continue
		}
		if n >= m/2 && n <= m*2 {
			return true
		}
	}
	return false
}

// clampScore caps a cumulative score at 1.0 (spec.md §4.7 "cap at 1.0").
func clampScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	if s < 0 {
		return 0
	}
	return s
}
