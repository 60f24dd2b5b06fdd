package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "promptforge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error writing config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsWhenFileOmitsFields(t *testing.T) {
	v, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Defaults()
	if cfg.Model != want.Model || cfg.TimeoutMs != want.TimeoutMs || cfg.MaxQuestions != want.MaxQuestions {
		t.Fatalf("expected defaults to apply, got %+v", cfg)
	}
}

func TestLoadOverridesFromConfigFile(t *testing.T) {
	path := writeConfigFile(t, "model: gpt-4o\nfallbackModel: gpt-4o-mini\ntimeoutMs: 9000\nmaxQuestions: 2\n")
	v, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "gpt-4o" || cfg.FallbackModel != "gpt-4o-mini" || cfg.TimeoutMs != 9000 || cfg.MaxQuestions != 2 {
		t.Fatalf("expected file values to override defaults, got %+v", cfg)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("PROMPTFORGE_MODEL", "claude-3-5-sonnet")
	v, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "claude-3-5-sonnet" {
		t.Fatalf("expected env var to override default model, got %q", cfg.Model)
	}
}

func TestLoadRejectsInvalidPreset(t *testing.T) {
	path := writeConfigFile(t, "model: gpt-4o\npreset: nonsense\n")
	v, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Load(v); err == nil {
		t.Fatal("expected an invalid preset to fail validation")
	}
}

func TestLoadRejectsZeroTimeout(t *testing.T) {
	path := writeConfigFile(t, "model: gpt-4o\ntimeoutMs: 0\n")
	v, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Load(v); err == nil {
		t.Fatal("expected timeoutMs=0 to fail validation")
	}
}

func TestLLMClientOptionsProjection(t *testing.T) {
	cfg := Defaults()
	cfg.FallbackModel = "fallback-model"
	opts := cfg.LLMClientOptions()
	if opts.Model != cfg.Model || opts.FallbackModel != "fallback-model" || opts.TimeoutMs != cfg.TimeoutMs {
		t.Fatalf("expected projection to carry model/fallback/timeout, got %+v", opts)
	}
}

func TestQualityConfigProjectionCarriesExtensions(t *testing.T) {
	cfg := Defaults()
	cfg.BannedSnippets = []string{"proprietary"}
	cfg.MetaLineStarters = []string{"internal note:"}
	qc := cfg.QualityConfig()
	if len(qc.BannedSnippets) != 1 || qc.BannedSnippets[0] != "proprietary" {
		t.Fatalf("expected banned snippet extension to carry through, got %+v", qc.BannedSnippets)
	}
	if len(qc.MetaLineStarters) != 1 || qc.MetaLineStarters[0] != "internal note:" {
		t.Fatalf("expected meta-line-starter extension to carry through, got %+v", qc.MetaLineStarters)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfigFile(t, "model: gpt-4o\nprovider: not-a-real-provider\n")
	v, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Load(v); err == nil {
		t.Fatal("expected an unknown provider to fail validation")
	}
}

func TestLLMConfigProjectionCarriesProviderAndKey(t *testing.T) {
	cfg := Defaults()
	cfg.Provider = "anthropic"
	cfg.BaseURL = "https://example.test"
	llmCfg := cfg.LLMConfig("sk-test")
	if string(llmCfg.Provider) != "anthropic" || llmCfg.APIKey != "sk-test" || llmCfg.BaseURL != cfg.BaseURL || llmCfg.Model != cfg.Model {
		t.Fatalf("unexpected projection: %+v", llmCfg)
	}
}

func TestWatcherReloadsExtensionsOnFileEdit(t *testing.T) {
	path := writeConfigFile(t, "model: gpt-4o\nbannedSnippets: [\"v1\"]\n")
	v, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, err := NewWatcher(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	if got := w.Snapshot().BannedSnippets; len(got) != 1 || got[0] != "v1" {
		t.Fatalf("expected initial snapshot to carry v1, got %+v", got)
	}

	if err := os.WriteFile(path, []byte("model: gpt-4o\nbannedSnippets: [\"v2\"]\n"), 0o644); err != nil {
		t.Fatalf("unexpected error editing config file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := w.Snapshot().BannedSnippets; len(got) == 1 && got[0] == "v2" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected the watcher to pick up the edited bannedSnippets, got %+v", w.Snapshot().BannedSnippets)
}
