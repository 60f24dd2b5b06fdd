package config

import (
	"fmt"

	"github.com/josephgoksu/promptforge/internal/llmclient"
	"github.com/josephgoksu/promptforge/internal/quality"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/types"
)

// EngineConfig is the injected configuration surface of spec.md §6: every
// value that alters engine behavior, layered from defaults, a config file,
// and environment variables.
type EngineConfig struct {
	Provider      string  `mapstructure:"provider"`
	BaseURL       string  `mapstructure:"baseUrl" validate:"omitempty,url"`
	Model         string  `mapstructure:"model" validate:"required"`
	FallbackModel string  `mapstructure:"fallbackModel"`
	TimeoutMs     int     `mapstructure:"timeoutMs" validate:"min=1"`
	Temperature   float64 `mapstructure:"temperature" validate:"min=0,max=2"`

	HealthCheckTimeoutMs int `mapstructure:"healthCheckTimeoutMs" validate:"min=1"`

	MaxQuestions     int     `mapstructure:"maxQuestions" validate:"min=0"`
	MaxAssumptions   int     `mapstructure:"maxAssumptions" validate:"min=0"`
	EnableAutoRepair bool    `mapstructure:"enableAutoRepair"`
	MinConfidence    float64 `mapstructure:"minConfidence" validate:"min=0,max=1"`

	BannedSnippets   []string `mapstructure:"bannedSnippets"`
	MetaLineStarters []string `mapstructure:"metaLineStarters"`

	Preset types.Preset `mapstructure:"preset"`

	WizardMode     types.WizardMode `mapstructure:"wizardMode"`
	WizardMaxTurns int              `mapstructure:"wizardMaxTurns" validate:"min=1"`
}

// Defaults returns the spec.md §6 default configuration.
func Defaults() EngineConfig {
	provider := llm.ProviderOpenAI
	return EngineConfig{
		Provider:             string(provider),
		Model:                llm.DefaultModelForProvider(provider),
		TimeoutMs:            30000,
		Temperature:          0,
		HealthCheckTimeoutMs: 5000,
		MaxQuestions:         3,
		MaxAssumptions:       5,
		EnableAutoRepair:     true,
		MinConfidence:        0,
		Preset:               types.PresetDefault,
		WizardMode:           types.WizardModeAuto,
		WizardMaxTurns:       3,
	}
}

// Validate reports whether cfg's closed-set fields (preset, wizard mode)
// and numeric bounds are well formed.
func (c EngineConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	if c.Provider != "" {
		if _, err := llm.ValidateProvider(c.Provider); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.TimeoutMs < 1 {
		return fmt.Errorf("config: timeoutMs must be >= 1")
	}
	if c.HealthCheckTimeoutMs < 1 {
		return fmt.Errorf("config: healthCheckTimeoutMs must be >= 1")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature must be in [0,2]")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("config: minConfidence must be in [0,1]")
	}
	if c.Preset != "" && !c.Preset.Valid() {
		return fmt.Errorf("config: invalid preset %q", c.Preset)
	}
	if c.WizardMode != "" && !c.WizardMode.Valid() {
		return fmt.Errorf("config: invalid wizardMode %q", c.WizardMode)
	}
	if c.WizardMaxTurns < 1 {
		return fmt.Errorf("config: wizardMaxTurns must be >= 1")
	}
	return nil
}

// LLMConfig projects the engine config onto llm.Config. apiKey is passed
// in separately since credentials are sourced from the environment, not
// the config file (spec.md §6 lists no credential field).
func (c EngineConfig) LLMConfig(apiKey string) llm.Config {
	provider := c.Provider
	if provider == "" {
		provider = string(llm.ProviderOpenAI)
	}
	return llm.Config{
		Provider: llm.Provider(provider),
		Model:    c.Model,
		APIKey:   apiKey,
		BaseURL:  c.BaseURL,
	}
}

// LLMClientOptions projects the engine config onto llmclient.Options.
func (c EngineConfig) LLMClientOptions() llmclient.Options {
	return llmclient.Options{
		Model:            c.Model,
		FallbackModel:    c.FallbackModel,
		TimeoutMs:        c.TimeoutMs,
		Temperature:      c.Temperature,
		EnableAutoRepair: c.EnableAutoRepair,
		QualityConfig:    c.QualityConfig(),
	}
}

// QualityConfig projects the engine config's extensible closed sets onto
// quality.Config. BannedSnippets/MetaLineStarters here are extensions
// only — the base closed sets live in quality.BannedPhrases and
// quality.MetaLineStarters and are always checked regardless (spec.md §6:
// "implementations may extend only via configuration").
func (c EngineConfig) QualityConfig() quality.Config {
	base := quality.DefaultConfig()
	return quality.Config{
		BannedSnippets:   c.BannedSnippets,
		MetaLineStarters: c.MetaLineStarters,
		MinConfidence:    c.MinConfidence,
		MaxQuestions:     firstNonZeroInt(c.MaxQuestions, base.MaxQuestions),
		MaxAssumptions:   firstNonZeroInt(c.MaxAssumptions, base.MaxAssumptions),
		MinPromptLength:  base.MinPromptLength,
	}
}

func firstNonZeroInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}
