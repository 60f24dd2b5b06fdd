package optimize

import (
	"context"
	"fmt"
	"strings"

	"github.com/josephgoksu/promptforge/internal/errors"
	"github.com/josephgoksu/promptforge/internal/llmclient"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/types"
)

// maxOPROIterations bounds the OPRO loop (spec.md §4.7: "max 3 iterations").
const maxOPROIterations = 3

// oproTrajectoryStep records one scored iteration for the meta-prompt
// spec.md §4.7 step 2 describes ("the full trajectory: each prior
// candidate + its score + the validator feedback").
type oproTrajectoryStep struct {
	candidate candidate
	score     float64
}

// OPROOptimizer implements spec.md §4.7's REFACTOR/GENERATE/EXPLAIN
// strategy: iterative refinement over a scored trajectory, early-stopping
// once a candidate scores >= 1.0.
type OPROOptimizer struct{}

func (OPROOptimizer) Optimize(ctx context.Context, transport llm.Transport, system, user string, req types.AnalyzedRequest, examples []types.FewShotExample, opts llmclient.Options) (types.ImprovementResult, *errors.Error) {
	first := generate(ctx, transport, system, user, opts)
	trajectory := []oproTrajectoryStep{{candidate: first, score: scoreOPRO(first, examples)}}

	if trajectory[0].score >= 1.0 {
		return bestOf(trajectory)
	}

	for i := 2; i <= maxOPROIterations; i++ {
		metaSystem, metaUser := buildOPROMetaPrompt(system, user, trajectory)
		next := generate(ctx, transport, metaSystem, metaUser, opts)
		score := scoreOPRO(next, examples)
		trajectory = append(trajectory, oproTrajectoryStep{candidate: next, score: score})
		if score >= 1.0 {
			break
		}
	}

	return bestOf(trajectory)
}

func bestOf(trajectory []oproTrajectoryStep) (types.ImprovementResult, *errors.Error) {
	best := trajectory[0]
	for _, step := range trajectory[1:] {
		if step.score > best.score {
			best = step
		}
	}
	if !best.candidate.ok() {
		return types.ImprovementResult{}, best.candidate.err
	}
	return best.candidate.result, nil
}

// scoreOPRO implements spec.md §4.7 step 3's deterministic score:
// validator-pass + normalized confidence + structural bonus + few-shot
// adherence bonus, capped at 1.0.
func scoreOPRO(c candidate, examples []types.FewShotExample) float64 {
	if !c.ok() {
		return 0
	}
	score := 0.7 * 1.0 // validator-pass: a candidate with no error has already cleared the hard-fail gate
	score += 0.3 * c.result.Confidence
	if hasStructuralSections(c.result.ImprovedPrompt) {
		score += 0.05
	}
	if fewShotAdherence(c.result.ImprovedPrompt, examples) {
		score += 0.05
	}
	return clampScore(score)
}

// buildOPROMetaPrompt renders the trajectory-aware meta-prompt for
// iterations 2..N (spec.md §4.7 step 2).
func buildOPROMetaPrompt(system, user string, trajectory []oproTrajectoryStep) (string, string) {
	metaSystem := system + "\n\nYou are refining a prior rewrite using its scored history. Produce a strictly better candidate."

	var sb strings.Builder
	sb.WriteString(user)
	sb.WriteString("\n\n--- Prior trajectory ---\n")
	for i, step := range trajectory {
		sb.WriteString(fmt.Sprintf("Attempt %d (score %.2f): %s\n", i+1, step.score, diagnosis(step.candidate, "accepted, but can be improved further")))
		if step.candidate.ok() {
			sb.WriteString(step.candidate.result.ImprovedPrompt)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nRegenerate the JSON object with a higher-scoring improved_prompt.")
	return metaSystem, sb.String()
}
