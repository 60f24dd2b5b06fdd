// Package complexity derives a request's complexity level from token count
// and technical-term density (spec.md §4.3). New logic grounded directly on
// spec.md: the teacher's complexity concept (types/complexity.go) is an
// LLM-scored 1-10 value over tasks, whereas this spec explicitly wants a
// deterministic heuristic over raw ideas, with no LLM call.
package complexity

import (
	"regexp"
	"strings"

	"github.com/josephgoksu/promptforge/types"
)

var connectorPattern = regexp.MustCompile(`(?i)\band also\b|,`)

// technicalRequirementPhrases are phrases that indicate a distinct
// technical requirement, used to count "distinct technical-requirement
// phrases" for the COMPLEX threshold (spec.md §4.3).
var technicalRequirementPhrases = []string{
	"oauth", "jwt", "rbac", "redis", "database", "api", "websocket",
	"authentication", "authorization", "cache", "queue", "migration",
	"schema", "encryption", "session", "rate limit",
}

// Result is the analyzer's output.
type Result struct {
	Level          types.Complexity
	Confidence     float64
	SignalsMatched int
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

func countConnectors(s string) int {
	return len(connectorPattern.FindAllString(s, -1))
}

func countTechnicalPhrases(lower string) int {
	n := 0
	for _, p := range technicalRequirementPhrases {
		if strings.Contains(lower, p) {
			n++
		}
	}
	return n
}

// Analyze derives complexity per spec.md §4.3's thresholds:
//   - SIMPLE: <=15 tokens and no multi-requirement connectors.
//   - MODERATE: 16-30 tokens, or at least one connector.
//   - COMPLEX: >30 tokens, or >=2 distinct technical-requirement phrases.
func Analyze(idea string) Result {
	tokens := tokenize(idea)
	n := len(tokens)
	connectors := countConnectors(idea)
	techPhrases := countTechnicalPhrases(strings.ToLower(idea))

	signals := connectors + techPhrases

	var level types.Complexity
	switch {
	case n > 30 || techPhrases >= 2:
		level = types.ComplexityComplex
	case n >= 16 || connectors >= 1:
		level = types.ComplexityModerate
	default:
		level = types.ComplexitySimple
	}

	confidence := 0.6
	switch {
	case level == types.ComplexitySimple && n <= 8:
		confidence = 0.9
	case level == types.ComplexityComplex && (n > 40 || techPhrases >= 3):
		confidence = 0.9
	}

	return Result{Level: level, Confidence: confidence, SignalsMatched: signals}
}
