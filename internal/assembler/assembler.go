package assembler

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/promptforge/types"
)

// SchemaContract is the literal schema description every assembled user
// message ends with (spec.md §4.6, §6). Appearing exactly once satisfies
// the round-trip law in spec.md §8.
const SchemaContract = `Respond with a JSON object with exactly these fields:
improved_prompt: string (non-empty)
clarifying_questions: array of string (length <= 3, each non-empty, unique)
assumptions: array of string (length <= 5, each non-empty, unique)
confidence: number in [0.0, 1.0]`

// Assembled holds the composed system and user messages.
type Assembled struct {
	System string
	User   string
}

// BuildFewShotBlock formats examples as the "Reference Patterns" block
// (spec.md §4.6): "## Example i\nInput: ...\nOutput: ...".
func BuildFewShotBlock(examples []types.FewShotExample) string {
	if len(examples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Reference Patterns\n")
	for i, ex := range examples {
		sb.WriteString(fmt.Sprintf("## Example %d\nInput: %s\nOutput: %s\n", i+1, ex.Input, ex.Output))
	}
	return sb.String()
}

// Assemble composes the system and user messages for a single LLM call
// (spec.md §4.6). RaR is applied only when req.Complexity is COMPLEX.
func Assemble(req types.AnalyzedRequest, examples []types.FewShotExample) Assembled {
	role := RoleFor(req.Intent, req.Complexity)
	system := fmt.Sprintf("You are a %s helping improve a rough request into a precise, actionable prompt.", role)

	var sections []string
	sections = append(sections, fmt.Sprintf("## Request\n%s", req.Idea))
	if strings.TrimSpace(req.Context) != "" {
		sections = append(sections, fmt.Sprintf("## Context\n%s", req.Context))
	}

	if req.Complexity == types.ComplexityComplex {
		understanding, requirements := BuildRaR(req.Idea)
		sections = append(sections, understanding, requirements)
	}

	if block := BuildFewShotBlock(examples); block != "" {
		sections = append(sections, block)
	}

	sections = append(sections, SchemaContract)

	user := strings.Join(sections, "\n\n")
	return Assembled{System: system, User: user}
}
