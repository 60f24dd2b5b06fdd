/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/josephgoksu/promptforge/internal/cache"
	"github.com/josephgoksu/promptforge/internal/config"
	"github.com/josephgoksu/promptforge/internal/history"
	"github.com/josephgoksu/promptforge/internal/knn"
	"github.com/josephgoksu/promptforge/internal/orchestrator"
	"github.com/josephgoksu/promptforge/internal/quality"
	"github.com/josephgoksu/promptforge/internal/wizard"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/prompts"
)

const (
	defaultHistoryPath  = ".promptforge/history.jsonl"
	defaultSessionsPath = ".promptforge/sessions"
)

// buildEngine loads configuration and wires an Orchestrator plus a wizard
// Manager from it. A missing provider credential degrades the transport to
// nil, which Orchestrator treats as Identity mode rather than failing
// outright (spec.md §6). When configPath names a file on disk, the
// returned *config.Watcher keeps the orchestrator's quality gate reading
// live-reloaded bannedSnippets/metaLineStarters (spec.md §6's hot-reload
// requirement); callers should Close it on shutdown. It is nil when
// configPath is empty, since fsnotify has nothing to watch.
func buildEngine(configPath string) (*orchestrator.Orchestrator, *wizard.Manager, *config.Watcher, config.EngineConfig, error) {
	v, err := config.New(configPath)
	if err != nil {
		return nil, nil, nil, config.EngineConfig{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, config.EngineConfig{}, fmt.Errorf("load config: %w", err)
	}

	var watcher *config.Watcher
	if configPath != "" {
		watcher, err = config.NewWatcher(v)
		if err != nil {
			return nil, nil, nil, config.EngineConfig{}, fmt.Errorf("watch config: %w", err)
		}
	}

	var transport llm.Transport
	if apiKey := apiKeyForProvider(cfg.Provider); apiKey != "" {
		t, err := llm.NewEinoTransport(cfg.LLMConfig(apiKey))
		if err != nil {
			return nil, nil, nil, config.EngineConfig{}, fmt.Errorf("build llm transport: %w", err)
		}
		transport = t
	}

	catalog, err := prompts.GetCatalog("")
	if err != nil {
		return nil, nil, nil, config.EngineConfig{}, fmt.Errorf("load few-shot catalog: %w", err)
	}

	fs := afero.NewOsFs()
	historyStore := history.NewStore(fs, defaultHistoryPath, 0)
	sessions := wizard.NewManager(wizard.NewStore(fs, defaultSessionsPath))

	engine := orchestrator.New(transport, knn.NewProvider(catalog), cache.New(cache.Config{}), historyStore, cfg.LLMClientOptions())
	if watcher != nil {
		engine.QualitySource = func() quality.Config { return watcher.Snapshot().QualityConfig() }
	}
	return engine, sessions, watcher, cfg, nil
}

// apiKeyForProvider reads the credential environment variable matching
// provider, following each vendor SDK's own conventional variable name.
func apiKeyForProvider(provider string) string {
	switch llm.Provider(provider) {
	case llm.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case llm.ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case llm.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case llm.ProviderOllama:
		return "local" // ollama needs no credential, just a reachable BaseURL
	default:
		return ""
	}
}
