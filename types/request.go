package types

import "strings"

// ImproveRequest is the raw input to the pipeline, as supplied by the caller.
type ImproveRequest struct {
	Idea          string        `json:"idea" validate:"required"`
	Context       string        `json:"context,omitempty"`
	Preset        Preset        `json:"preset,omitempty"`
	Mode          ExecutionMode `json:"mode,omitempty"`
	TimeoutMs     int           `json:"timeout_ms,omitempty" validate:"omitempty,min=1"`
	Model         string        `json:"model,omitempty"`
	FallbackModel string        `json:"fallback_model,omitempty"`
}

// MinIdeaLength is the minimum trimmed length of an accepted idea (§8).
const MinIdeaLength = 5

// Normalize trims the idea/context and fills closed-set defaults, matching
// the normalization spec.md §4.8 requires for cache-key derivation.
func (r ImproveRequest) Normalize() ImproveRequest {
	r.Idea = collapseWhitespace(strings.TrimSpace(r.Idea))
	r.Context = collapseWhitespace(strings.TrimSpace(r.Context))
	if r.Preset == "" {
		r.Preset = PresetDefault
	}
	if r.Mode == "" {
		r.Mode = ExecutionModeRemote
	}
	return r
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// AnalyzedRequest is an ImproveRequest enriched with derived intent,
// complexity, and the analyzer's confidence in that derivation.
type AnalyzedRequest struct {
	ImproveRequest
	Intent             Intent
	Complexity         Complexity
	AnalysisConfidence float64
}
