// Package classify maps a free-text idea to one of the closed-set intents
// via keyword-vote precedence (spec.md §4.2). Grounded on
// types/complexity.go's closed-set scoring idiom, generalized to votes over
// keyword matches rather than an LLM-scored 1-10 value.
package classify

import (
	"strings"

	"github.com/josephgoksu/promptforge/types"
)

var debugKeywords = []string{"fix", "error", "bug", "traceback", "not working", "crash", "exception", "fails"}
var refactorKeywords = []string{"refactor", "simplify", "optimize", "clean up", "cleanup", "restructure"}
var generateKeywords = []string{"create", "build", "write", "generate", "implement", "add"}

// Result is the classifier's output: an intent and its confidence.
type Result struct {
	Intent     types.Intent
	Confidence float64
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// Classify applies the rule-based precedence order from spec.md §4.2:
// DEBUG keywords win outright if present, else REFACTOR if dominant (at
// least as many votes as GENERATE; ties go to REFACTOR), else GENERATE if
// any generate keyword matched, else EXPLAIN as the default. Confidence is the
// fraction of matched votes for the winning intent over all detected
// signals across all three keyword sets; 0.5 if nothing matched.
func Classify(idea string) Result {
	lower := strings.ToLower(idea)

	debug := countMatches(lower, debugKeywords)
	refactor := countMatches(lower, refactorKeywords)
	generate := countMatches(lower, generateKeywords)
	total := debug + refactor + generate

	var intent types.Intent
	var matched int
	switch {
	case debug > 0:
		intent, matched = types.IntentDebug, debug
	case refactor > 0 && refactor >= generate:
		intent, matched = types.IntentRefactor, refactor
	case generate > 0:
		intent, matched = types.IntentGenerate, generate
	default:
		return Result{Intent: types.IntentExplain, Confidence: 0.5}
	}

	confidence := float64(matched) / float64(total)
	return Result{Intent: intent, Confidence: confidence}
}
