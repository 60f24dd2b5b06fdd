package wizard

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/josephgoksu/promptforge/types"
)

func TestDecideOffIsAlwaysDisabled(t *testing.T) {
	enabled, skip := Decide(types.WizardModeOff, 5, 0.1, types.IntentGenerate, types.ComplexityComplex)
	if enabled || skip {
		t.Fatalf("expected off mode to always be disabled, got enabled=%v skip=%v", enabled, skip)
	}
}

func TestDecideAlwaysIsAlwaysEnabled(t *testing.T) {
	enabled, skip := Decide(types.WizardModeAlways, 1, 0.99, types.IntentExplain, types.ComplexitySimple)
	if !enabled || skip {
		t.Fatalf("expected always mode to enable without skip, got enabled=%v skip=%v", enabled, skip)
	}
}

func TestDecideAutoEnablesOnLowConfidence(t *testing.T) {
	enabled, _ := Decide(types.WizardModeAuto, 1, 0.5, types.IntentExplain, types.ComplexitySimple)
	if !enabled {
		t.Fatal("expected auto mode to enable on confidence < 0.7")
	}
}

func TestDecideAutoDisablesWhenNothingTriggers(t *testing.T) {
	enabled, skip := Decide(types.WizardModeAuto, 1, 0.9, types.IntentExplain, types.ComplexitySimple)
	if enabled {
		t.Fatal("expected auto mode to stay disabled absent any trigger")
	}
	if skip {
		t.Fatal("canOfferSkip requires max_turns > 1")
	}
}

func TestDecideAutoCanOfferSkip(t *testing.T) {
	enabled, skip := Decide(types.WizardModeAuto, 3, 0.9, types.IntentExplain, types.ComplexitySimple)
	if !enabled || !skip {
		t.Fatalf("expected enabled+skip, got enabled=%v skip=%v", enabled, skip)
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewManager(NewStore(fs, "/sessions"))
}

func TestStartAppendResolveRoundTrip(t *testing.T) {
	m := newTestManager(t)
	rec, err := m.Start("build a login form", types.PresetDefault, types.WizardModeAlways, 3, 0.5, types.IntentGenerate, types.ComplexityModerate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Wizard.Enabled || rec.Wizard.Resolved {
		t.Fatalf("expected an active session, got %+v", rec.Wizard)
	}

	rec, err = m.AppendUserMessage(rec.ID, "it should support OAuth2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Wizard.CurrentTurn != 1 || rec.Wizard.Resolved {
		t.Fatalf("expected turn 1, unresolved, got %+v", rec.Wizard)
	}

	rec, err = m.AppendAssistantMessage(rec.ID, "# Build a login form with OAuth2", 0.9, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Wizard.Resolved {
		t.Fatal("expected isAmbiguous=false to resolve the session")
	}

	final, ok := ExtractFinalPrompt(rec)
	if !ok || final != "# Build a login form with OAuth2" {
		t.Fatalf("expected the #-prefixed assistant message, got %q ok=%v", final, ok)
	}

	chat := ToChatFormat(rec)
	if len(chat) != 3 {
		t.Fatalf("expected 3 messages (original + 1 user + 1 assistant), got %d", len(chat))
	}
}

func TestAppendUserMessageResolvesAtMaxTurns(t *testing.T) {
	m := newTestManager(t)
	rec, _ := m.Start("idea", types.PresetDefault, types.WizardModeAlways, 1, 0.5, types.IntentGenerate, types.ComplexityModerate)
	rec, err := m.AppendUserMessage(rec.ID, "clarification")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Wizard.Resolved {
		t.Fatal("expected the session to resolve once current_turn reaches max_turns")
	}
}

func TestCompleteWizardForcesResolved(t *testing.T) {
	m := newTestManager(t)
	rec, _ := m.Start("idea", types.PresetDefault, types.WizardModeAlways, 5, 0.5, types.IntentGenerate, types.ComplexityModerate)
	rec, err := m.CompleteWizard(rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Wizard.Resolved {
		t.Fatal("expected CompleteWizard to resolve the session")
	}
}

func TestLoadMissingSessionReturnsErrSessionNotFound(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Snapshot("does-not-exist"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
