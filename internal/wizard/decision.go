// Package wizard implements the conversational wizard / session state
// machine of spec.md §4.9: a multi-turn ambiguity resolver whose
// mutations are serialized per session id and persisted atomically.
//
// Grounded on internal/app/plan.go's Clarify loop (turn-bounded,
// confidence-gated refinement) and store/file_store.go's flock + atomic
// temp-file-then-rename persistence cycle.
package wizard

import "github.com/josephgoksu/promptforge/types"

// Decide implements spec.md §4.9's entry decision table and canOfferSkip
// rule.
func Decide(mode types.WizardMode, maxTurns int, confidence float64, intent types.Intent, complexity types.Complexity) (enabled, canOfferSkip bool) {
	switch mode {
	case types.WizardModeOff:
		return false, false
	case types.WizardModeAlways:
		return true, false
	case types.WizardModeAuto:
		enabled := intent == types.IntentGenerate || complexity == types.ComplexityComplex || confidence < 0.7 || maxTurns > 1
		canOfferSkip := maxTurns > 1 && confidence >= 0.7 && complexity != types.ComplexityComplex && intent != types.IntentGenerate
		return enabled, canOfferSkip
	default:
		return false, false
	}
}
