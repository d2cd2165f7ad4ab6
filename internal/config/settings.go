package config

import (
	"fmt"

	"github.com/matsen/litsurvey/internal/citation"
	"github.com/matsen/litsurvey/internal/stats"
	"github.com/matsen/litsurvey/internal/storage"
)

// Settings is the effective configuration after defaults are applied.
type Settings struct {
	OutputDir       string  `json:"output_dir"`
	Threshold       float64 `json:"threshold"`
	CheckpointEvery int     `json:"checkpoint_every"`
	JournalPath     string  `json:"journal_path"`
	UserAgent       string  `json:"user_agent,omitempty"`
	LogLevel        string  `json:"log_level"`
	HasS2APIKey     bool    `json:"has_s2_api_key"`
	HasScopusAPIKey bool    `json:"has_scopus_api_key"`

	s2APIKey     string
	scopusAPIKey string
}

// DefaultLogLevel is used when no level is configured.
const DefaultLogLevel = "info"

// Resolve fills unset values of cfg with defaults.
func Resolve(cfg *GlobalConfig) Settings {
	if cfg == nil {
		cfg = &GlobalConfig{}
	}
	s := Settings{
		OutputDir:       cfg.OutputDir,
		Threshold:       cfg.Threshold,
		CheckpointEvery: cfg.CheckpointEvery,
		JournalPath:     cfg.JournalPath,
		UserAgent:       cfg.UserAgent,
		LogLevel:        cfg.LogLevel,
		HasS2APIKey:     cfg.S2APIKey != "",
		HasScopusAPIKey: cfg.ScopusAPIKey != "",
		s2APIKey:        cfg.S2APIKey,
		scopusAPIKey:    cfg.ScopusAPIKey,
	}

	if s.OutputDir == "" {
		s.OutputDir = storage.DefaultOutputDir
	}
	if s.Threshold == 0 {
		s.Threshold = stats.DefaultThreshold
	}
	if s.CheckpointEvery == 0 {
		s.CheckpointEvery = citation.DefaultCheckpointEvery
	}
	if s.JournalPath == "" {
		s.JournalPath = DefaultJournalPath()
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	return s
}

// Load reads the global config and resolves it.
func Load() (Settings, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return Settings{}, err
	}
	s := Resolve(cfg)
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config %s: %w", GlobalConfigPath(), err)
	}
	return s, nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.Threshold <= 0 || s.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", s.Threshold)
	}
	if s.CheckpointEvery < 1 {
		return fmt.Errorf("checkpoint_every must be at least 1, got %d", s.CheckpointEvery)
	}
	return nil
}

// Citation returns the resolver configuration. Provider keys only ever
// reach the resolver through here.
func (s Settings) Citation() citation.Config {
	return citation.Config{
		SemanticScholarAPIKey: s.s2APIKey,
		ScopusAPIKey:          s.scopusAPIKey,
		UserAgent:             s.UserAgent,
	}
}
