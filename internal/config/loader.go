// Package config loads the engine's configuration surface (spec.md §6)
// from layered sources — defaults, an optional config file, and
// environment variables — and watches the extensible closed sets
// (bannedSnippets, metaLineStarters) for live edits.
//
// Grounded on internal/config/llm_loader.go's viper precedence idiom
// (explicit config > env vars > defaults), adapted from a global package-
// level viper instance to an injected *viper.Viper so multiple engines
// (and tests) never share state.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PROMPTFORGE"

// New builds a *viper.Viper seeded with Defaults(), optionally reading
// configPath (if non-empty) and a ".env" file in the working directory
// (ignored if absent, matching the teacher's godotenv usage elsewhere).
func New(configPath string) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper, d EngineConfig) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("baseUrl", d.BaseURL)
	v.SetDefault("model", d.Model)
	v.SetDefault("fallbackModel", d.FallbackModel)
	v.SetDefault("timeoutMs", d.TimeoutMs)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("healthCheckTimeoutMs", d.HealthCheckTimeoutMs)
	v.SetDefault("maxQuestions", d.MaxQuestions)
	v.SetDefault("maxAssumptions", d.MaxAssumptions)
	v.SetDefault("enableAutoRepair", d.EnableAutoRepair)
	v.SetDefault("minConfidence", d.MinConfidence)
	v.SetDefault("bannedSnippets", d.BannedSnippets)
	v.SetDefault("metaLineStarters", d.MetaLineStarters)
	v.SetDefault("preset", string(d.Preset))
	v.SetDefault("wizardMode", string(d.WizardMode))
	v.SetDefault("wizardMaxTurns", d.WizardMaxTurns)
}

var structValidator = validator.New()

// Load decodes v into an EngineConfig and validates it.
func Load(v *viper.Viper) (EngineConfig, error) {
	var cfg EngineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := structValidator.Struct(cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: validate: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
