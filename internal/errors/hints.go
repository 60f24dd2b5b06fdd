package errors

import "strings"

// hintRule maps a substring found in an error's text, optionally scoped to
// an execution mode, to a caller-facing hint string (spec.md §6 "Error-hint
// surface"). mode == "" matches any mode.
type hintRule struct {
	substr string
	mode   string
	hint   string
}

var hintRules = []hintRule{
	{substr: "timeout", hint: "The request timed out; try again shortly."},
	{substr: "connection refused", hint: "Could not reach the LLM endpoint; check connectivity."},
	{substr: "model not found", hint: "Check the configured model id."},
	{substr: "rate limit", hint: "Slow down requests; you are being rate limited."},
	{substr: "unauthorized", hint: "Check the configured API key."},
	{substr: "schema", mode: "remote", hint: "The remote model returned an unexpected shape; a retry was attempted."},
}

// Hint is a pure function mapping (error text, mode) to one of a closed set
// of hint strings. On no match it returns ("", false) (spec.md §6).
func Hint(text, mode string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range hintRules {
		if r.mode != "" && r.mode != mode {
			continue
		}
		if strings.Contains(lower, r.substr) {
			return r.hint, true
		}
	}
	return "", false
}
