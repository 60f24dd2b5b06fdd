// Package assembler composes the system and user messages passed to the
// LLM: role injection, the few-shot "Reference Patterns" block,
// Rephrase-and-Respond for COMPLEX inputs, and the literal schema contract
// (spec.md §4.6). Grounded on prompts/prompts.go's XML-tagged-section
// system-prompt idiom and prompts/loader.go's override-by-file registry.
package assembler

import "github.com/josephgoksu/promptforge/types"

// RoleFor derives the role injected into the system prompt from intent and
// complexity (spec.md §4.6).
func RoleFor(intent types.Intent, cplx types.Complexity) string {
	switch intent {
	case types.IntentDebug:
		return "Code Debugger"
	case types.IntentRefactor:
		return "Refactoring Specialist"
	case types.IntentExplain:
		return "Technical Writer"
	case types.IntentGenerate:
		switch cplx {
		case types.ComplexitySimple:
			return "Developer"
		case types.ComplexityModerate:
			return "Senior Developer"
		case types.ComplexityComplex:
			return "Software Architect"
		}
	}
	return "Developer"
}
