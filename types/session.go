package types

// Message is one turn in a session transcript.
type Message struct {
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Timestamp int64          `json:"timestamp"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// WizardState is the per-session state-machine snapshot (§4.9).
type WizardState struct {
	Enabled         bool       `json:"enabled"`
	Bypassed        bool       `json:"bypassed"`
	Resolved        bool       `json:"resolved"`
	AmbiguityScore  float64    `json:"ambiguity_score"`
	Intent          Intent     `json:"intent,omitempty"`
	Complexity      Complexity `json:"complexity,omitempty"`
	Confidence      float64    `json:"confidence,omitempty"`
	Mode            WizardMode `json:"mode"`
	MaxTurns        int        `json:"max_turns"`
	CurrentTurn     int        `json:"current_turn"`
	TimeoutPerTurnMs int       `json:"timeout_per_turn_ms,omitempty"`
	// CanOfferSkip is surfaced to the UI only; the engine must never
	// branch on it internally (spec.md §9 open question).
	CanOfferSkip bool `json:"can_offer_skip"`
}

// SessionRecord is the wizard's persisted per-session state (§3).
type SessionRecord struct {
	ID             string      `json:"id"`
	OriginalInput  string      `json:"original_input"`
	Preset         Preset      `json:"preset,omitempty"`
	EngineTag      EngineTag   `json:"engine_tag,omitempty"`
	CreatedAtUnix  int64       `json:"created_at"`
	LastActiveUnix int64       `json:"last_active_at"`
	Messages       []Message   `json:"messages"`
	Wizard         WizardState `json:"wizard"`
}

// HistoryEntry is one append-only prompt-history record (§3, §4.10).
type HistoryEntry struct {
	ID          string    `json:"id"`
	Timestamp   int64     `json:"timestamp"`
	Prompt      string    `json:"prompt"`
	Confidence  *float64  `json:"confidence,omitempty"`
	Questions   []string  `json:"questions,omitempty"`
	Assumptions []string  `json:"assumptions,omitempty"`
	Source      EngineTag `json:"source,omitempty"`
	InputLength int       `json:"input_length"`
	Preset      Preset    `json:"preset,omitempty"`
}

// DefaultHistoryCap is the default compaction threshold (§3).
const DefaultHistoryCap = 20
