package wizard

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josephgoksu/promptforge/types"
)

// Manager serializes mutations per session id (a mutex keyed by id, per
// spec.md §4.9/§5) and persists every mutation atomically via Store.
type Manager struct {
	store *Store

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex
}

// NewManager builds a Manager persisting through store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store, locks: make(map[string]*sync.Mutex)}
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Start creates and persists a new session per the decision table
// (spec.md §4.9), returning its initial snapshot.
func (m *Manager) Start(originalInput string, preset types.Preset, mode types.WizardMode, maxTurns int, confidence float64, intent types.Intent, complexity types.Complexity) (types.SessionRecord, error) {
	enabled, canOfferSkip := Decide(mode, maxTurns, confidence, intent, complexity)
	now := time.Now().Unix()
	rec := types.SessionRecord{
		ID:             uuid.NewString(),
		OriginalInput:  originalInput,
		Preset:         preset,
		CreatedAtUnix:  now,
		LastActiveUnix: now,
		Messages: []types.Message{
			{Role: types.RoleUser, Content: originalInput, Timestamp: now},
		},
		Wizard: types.WizardState{
			Enabled:        enabled,
			Bypassed:       !enabled,
			Resolved:       !enabled,
			Mode:           mode,
			MaxTurns:       maxTurns,
			Confidence:     confidence,
			Intent:         intent,
			Complexity:     complexity,
			CanOfferSkip:   canOfferSkip,
			AmbiguityScore: 1 - confidence,
		},
	}
	lk := m.lockFor(rec.ID)
	lk.Lock()
	defer lk.Unlock()
	if err := m.store.Save(rec); err != nil {
		return types.SessionRecord{}, err
	}
	return rec, nil
}

// AppendUserMessage appends text as a user turn, increments
// current_turn, and marks resolved once max_turns is reached (spec.md
// §4.9).
func (m *Manager) AppendUserMessage(id, text string) (types.SessionRecord, error) {
	lk := m.lockFor(id)
	lk.Lock()
	defer lk.Unlock()

	rec, err := m.store.Load(id)
	if err != nil {
		return types.SessionRecord{}, err
	}
	now := time.Now().Unix()
	rec.Messages = append(rec.Messages, types.Message{Role: types.RoleUser, Content: text, Timestamp: now})
	rec.Wizard.CurrentTurn++
	rec.LastActiveUnix = now
	if rec.Wizard.CurrentTurn >= rec.Wizard.MaxTurns {
		rec.Wizard.Resolved = true
	}
	if err := m.store.Save(rec); err != nil {
		return types.SessionRecord{}, err
	}
	return rec, nil
}

// AppendAssistantMessage appends text as an assistant turn, records
// confidence as the new ambiguity score, and marks resolved when
// isAmbiguous is false (spec.md §4.9).
func (m *Manager) AppendAssistantMessage(id, text string, confidence float64, isAmbiguous bool) (types.SessionRecord, error) {
	lk := m.lockFor(id)
	lk.Lock()
	defer lk.Unlock()

	rec, err := m.store.Load(id)
	if err != nil {
		return types.SessionRecord{}, err
	}
	now := time.Now().Unix()
	rec.Messages = append(rec.Messages, types.Message{Role: types.RoleAssistant, Content: text, Timestamp: now})
	rec.Wizard.AmbiguityScore = confidence
	rec.LastActiveUnix = now
	if !isAmbiguous {
		rec.Wizard.Resolved = true
	}
	if err := m.store.Save(rec); err != nil {
		return types.SessionRecord{}, err
	}
	return rec, nil
}

// CompleteWizard marks the session resolved unconditionally.
func (m *Manager) CompleteWizard(id string) (types.SessionRecord, error) {
	lk := m.lockFor(id)
	lk.Lock()
	defer lk.Unlock()

	rec, err := m.store.Load(id)
	if err != nil {
		return types.SessionRecord{}, err
	}
	rec.Wizard.Resolved = true
	rec.LastActiveUnix = time.Now().Unix()
	if err := m.store.Save(rec); err != nil {
		return types.SessionRecord{}, err
	}
	return rec, nil
}

// ExtractFinalPrompt returns the last assistant message whose content
// starts with "#", or ("", false) if none does (spec.md §4.9).
func ExtractFinalPrompt(rec types.SessionRecord) (string, bool) {
	for i := len(rec.Messages) - 1; i >= 0; i-- {
		msg := rec.Messages[i]
		if msg.Role != types.RoleAssistant {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(msg.Content), "#") {
			return msg.Content, true
		}
	}
	return "", false
}

// ToChatFormat returns the original user input followed by every
// subsequent message, excluding system messages (spec.md §4.9).
func ToChatFormat(rec types.SessionRecord) []types.Message {
	out := make([]types.Message, 0, len(rec.Messages))
	for _, msg := range rec.Messages {
		if msg.Role == types.RoleSystem {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// Snapshot returns the current persisted state for id without taking the
// session lock beyond the read itself (spec.md §5: "read operations
// return snapshots and never block writers beyond the snapshot read").
func (m *Manager) Snapshot(id string) (types.SessionRecord, error) {
	return m.store.Load(id)
}
