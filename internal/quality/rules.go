// Package quality implements the hard-fail/soft-fail rules over a candidate
// improved_prompt (spec.md §4.5) and the closed sets of quality-rule
// strings (spec.md §6). Grounded on internal/knowledge/classify.go's
// closed-set-with-fallback idiom.
package quality

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// MetaLineStarters is the closed set of line prefixes that indicate the
// model leaked its instructions (spec.md §6). Extensible only via config.
var MetaLineStarters = []string{
	"task:",
	"rules:",
	"guardrails:",
	"rewrite instruction:",
	"raw user request:",
}

// BannedPhrases is the closed set of substrings that must never appear in
// an improved_prompt (spec.md §6). Extensible only via config.
var BannedPhrases = []string{
	"you are a prompt improver",
	"hard rules",
	"output rules",
	"clarifying_questions",
	"assumptions",
	"confidence",
	"do you want me to",
	"would you like me to",
	"as an ai",
	"as a language model",
}

// MinPromptLength is the default configurable minimum trimmed length
// (spec.md §4.5).
const MinPromptLength = 5

var foldCaser = cases.Fold()

func fold(s string) string { return foldCaser.String(s) }

// placeholderPatterns detect unfilled template placeholders (spec.md §6).
// Placeholder detection is a small fixed regex set; stdlib regexp is used
// deliberately (no pack library solves this better — see DESIGN.md).
var (
	doubleBracePattern = regexp.MustCompile(`\{\{.*?\}\}`)
	identPattern       = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	bracketIdentPattern = regexp.MustCompile(`\[([A-Za-z_][A-Za-z0-9_]*)\]`)
	angleBracketPattern = regexp.MustCompile(`<[^<>]*>`)
	jsonLikePattern     = regexp.MustCompile(`^\s*[\{\[].*[\}\]]\s*$`)
)

// HasPlaceholder reports whether s contains an unfilled placeholder of any
// of the three patterns spec.md §6 names.
func HasPlaceholder(s string) bool {
	if doubleBracePattern.MatchString(s) {
		return true
	}
	for _, m := range bracketIdentPattern.FindAllStringSubmatchIndex(s, -1) {
		// not preceded by ':' per spec.md §6 (spaces between the colon and
		// the bracket are skipped).
		j := m[0] - 1
		for j >= 0 && s[j] == ' ' {
			j--
		}
		if j >= 0 && s[j] == ':' {
			continue
		}
		ident := s[m[2]:m[3]]
		if identPattern.MatchString(ident) {
			return true
		}
	}
	if angleBracketPattern.MatchString(s) && !jsonLikePattern.MatchString(strings.TrimSpace(s)) {
		return true
	}
	return false
}

// HasBannedPhrase reports whether s contains any banned phrase (case
// insensitive, including extensions).
func HasBannedPhrase(s string, extensions []string) (string, bool) {
	folded := fold(s)
	for _, p := range BannedPhrases {
		if strings.Contains(folded, fold(p)) {
			return p, true
		}
	}
	for _, p := range extensions {
		if strings.Contains(folded, fold(p)) {
			return p, true
		}
	}
	return "", false
}

// StartsWithMetaLine reports whether the first non-whitespace line of s
// begins with one of the meta-line starters.
func StartsWithMetaLine(s string, extensions []string) (string, bool) {
	trimmed := strings.TrimLeft(s, "\n\r\t ")
	line := trimmed
	if idx := strings.IndexAny(trimmed, "\n\r"); idx >= 0 {
		line = trimmed[:idx]
	}
	folded := fold(strings.TrimSpace(line))
	for _, starter := range MetaLineStarters {
		if strings.HasPrefix(folded, fold(starter)) {
			return starter, true
		}
	}
	for _, starter := range extensions {
		if strings.HasPrefix(folded, fold(starter)) {
			return starter, true
		}
	}
	return "", false
}
