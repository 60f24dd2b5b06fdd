package quality

import (
	"fmt"
	"strings"
)

// Config carries the extensible parts of the quality surface (spec.md §6
// "bannedSnippets", "metaLineStarters", "minConfidence", "maxQuestions",
// "maxAssumptions").
type Config struct {
	BannedSnippets   []string
	MetaLineStarters []string
	MinConfidence    float64
	MaxQuestions     int
	MaxAssumptions   int
	MinPromptLength  int
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0,
		MaxQuestions:    3,
		MaxAssumptions:  5,
		MinPromptLength: MinPromptLength,
	}
}

// Violation names the first hard-fail rule broken and the offending
// fragment, used to build the repair prompt (spec.md §4.1, §4.5).
type Violation struct {
	Rule     string
	Fragment string
}

// Result is the outcome of validating a candidate improved_prompt.
type Result struct {
	Violation    *Violation // nil if no hard fail
	SoftWarnings []string
}

// Validate applies the hard-fail rules in a fixed order (first violation
// wins) and records soft-fail signals that never fail the call (spec.md
// §4.5).
func Validate(prompt string, confidence float64, questions, assumptions []string, cfg Config) Result {
	trimmed := strings.TrimSpace(prompt)
	minLen := cfg.MinPromptLength
	if minLen <= 0 {
		minLen = MinPromptLength
	}
	if len(trimmed) < minLen {
		return Result{Violation: &Violation{Rule: "min_length", Fragment: trimmed}}
	}
	if starter, ok := StartsWithMetaLine(prompt, cfg.MetaLineStarters); ok {
		return Result{Violation: &Violation{Rule: "meta_line_starter", Fragment: starter}}
	}
	if phrase, ok := HasBannedPhrase(prompt, cfg.BannedSnippets); ok {
		return Result{Violation: &Violation{Rule: "banned_phrase", Fragment: phrase}}
	}
	if HasPlaceholder(prompt) {
		return Result{Violation: &Violation{Rule: "placeholder", Fragment: "unfilled placeholder"}}
	}

	var warnings []string
	if cfg.MinConfidence > 0 && confidence < cfg.MinConfidence {
		warnings = append(warnings, "confidence below configured minimum")
	}
	maxQ := cfg.MaxQuestions
	if maxQ <= 0 {
		maxQ = 3
	}
	maxA := cfg.MaxAssumptions
	if maxA <= 0 {
		maxA = 5
	}
	if len(questions) > maxQ {
		warnings = append(warnings, "clarifying_questions exceeds configured maximum")
	}
	if len(assumptions) > maxA {
		warnings = append(warnings, "assumptions exceeds configured maximum")
	}
	return Result{SoftWarnings: warnings}
}

// BuildRepairPrompt builds the system+user pair spec.md §4.5 describes:
// instructs JSON-only output, cites the violated rule and fragment, and
// re-states the original idea verbatim.
func BuildRepairPrompt(system, originalIdea string, invalidOutput string, v Violation) (repairSystem, repairUser string) {
	repairSystem = strings.TrimSpace(system + "\nReturn ONLY valid JSON matching the schema; no commentary, no fences.")
	repairUser = fmt.Sprintf(
		"Your previous output violated rule %q (offending fragment: %q):\n\n%s\n\nReturn ONLY valid JSON matching the schema; no prose, no fences.\n\nOriginal request (verbatim):\n%s",
		v.Rule, v.Fragment, invalidOutput, originalIdea,
	)
	return repairSystem, repairUser
}

// EnforceBounds deduplicates and truncates questions/assumptions to the
// configured maxima (spec.md §4.5 "after dedup/truncation, enforce the
// bound").
func EnforceBounds(items []string, max int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// ClampConfidence clamps a confidence value to [0,1] (spec.md §8 boundary
// behaviors: 1.5 -> 1.0, -0.2 -> 0.0).
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
