package optimize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/josephgoksu/promptforge/internal/errors"
	"github.com/josephgoksu/promptforge/internal/llmclient"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/types"
)

// errorSymbolPattern finds the capitalized error/exception-style
// identifiers a debugging idea names (e.g. "ZeroDivisionError",
// "NullPointerException"), which Reflexion checks are carried into the
// improved prompt verbatim (spec.md §8 scenario 2).
var errorSymbolPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]*(?:Error|Exception|Panic|Fault)\b`)

func errorSymbols(idea string) []string {
	return errorSymbolPattern.FindAllString(idea, -1)
}

func addressesErrorSymptom(idea, improvedPrompt string) bool {
	symbols := errorSymbols(idea)
	if len(symbols) == 0 {
		return true
	}
	for _, s := range symbols {
		if !strings.Contains(improvedPrompt, s) {
			return false
		}
	}
	return true
}

// ReflexionOptimizer implements spec.md §4.7's DEBUG-intent strategy: at
// most 2 iterations, the second fed the prior candidate and its
// diagnosis.
type ReflexionOptimizer struct{}

func (ReflexionOptimizer) Optimize(ctx context.Context, transport llm.Transport, system, user string, req types.AnalyzedRequest, examples []types.FewShotExample, opts llmclient.Options) (types.ImprovementResult, *errors.Error) {
	first := generate(ctx, transport, system, user, opts)
	if first.ok() && addressesErrorSymptom(req.Idea, first.result.ImprovedPrompt) {
		return first.result, nil
	}

	diag := diagnosis(first, "does not carry the stated error symptom into the rewrite")
	sys2, user2 := buildReflexionRetryPrompt(system, user, first, diag)
	second := generate(ctx, transport, sys2, user2, opts)

	best := betterReflexionCandidate(first, second)
	if !best.ok() {
		return types.ImprovementResult{}, best.err
	}
	return best.result, nil
}

// buildReflexionRetryPrompt prepends the prior candidate and its
// diagnosis to the original exchange (spec.md §4.7 step 3).
func buildReflexionRetryPrompt(system, user string, prior candidate, diag string) (string, string) {
	retrySystem := system + "\n\nYour previous attempt did not fully resolve the reported issue. Address the diagnosis below directly."
	priorText := prior.result.ImprovedPrompt
	retryUser := fmt.Sprintf(
		"%s\n\n--- Prior attempt ---\n%s\n\n--- Diagnosis ---\n%s\n\nRegenerate the JSON object, fixing the diagnosed issue.",
		user, priorText, diag,
	)
	return retrySystem, retryUser
}

// betterReflexionCandidate implements spec.md §4.7 step 4's deterministic
// tie-break: passes-validator first (a candidate with no error always
// beats one with an error), then higher confidence.
func betterReflexionCandidate(a, b candidate) candidate {
	aPass, bPass := boolScore(a.ok()), boolScore(b.ok())
	if aPass != bPass {
		if aPass > bPass {
			return a
		}
		return b
	}
	if !a.ok() {
		// both failed; keep the first failure's error for the caller.
		return a
	}
	if a.result.Confidence >= b.result.Confidence {
		return a
	}
	return b
}

func boolScore(b bool) int {
	if b {
		return 1
	}
	return 0
}
