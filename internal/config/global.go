// Package config handles global configuration for litsurvey.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in
// $XDG_CONFIG_HOME/litsurvey/config.yml.
type GlobalConfig struct {
	OutputDir       string  `yaml:"output_dir,omitempty"`
	Threshold       float64 `yaml:"threshold,omitempty"`
	CheckpointEvery int     `yaml:"checkpoint_every,omitempty"`
	S2APIKey        string  `yaml:"s2_api_key,omitempty"`
	ScopusAPIKey    string  `yaml:"scopus_api_key,omitempty"`
	JournalPath     string  `yaml:"journal_path,omitempty"`
	UserAgent       string  `yaml:"user_agent,omitempty"`
	LogLevel        string  `yaml:"log_level,omitempty"`
}

const (
	// AppDir is the directory name under the XDG config and cache homes.
	AppDir = "litsurvey"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// JournalFile is the default resolution journal file name.
	JournalFile = "journal.db"
)

// Environment variables that override the config file.
const (
	EnvScopusAPIKey = "SCOPUS_API_KEY"
	EnvS2APIKey     = "S2_API_KEY"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppDir, GlobalConfigFile)
}

// DefaultJournalPath returns the default location of the resolution journal
// under the XDG cache home.
func DefaultJournalPath() string {
	return filepath.Join(xdg.CacheHome, AppDir, JournalFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides for API keys. A missing file is an empty config, not
// an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := readGlobalConfig(GlobalConfigPath())
	if err != nil {
		return nil, err
	}

	cfg.OutputDir = ExpandPath(cfg.OutputDir)
	cfg.JournalPath = ExpandPath(cfg.JournalPath)
	applyEnv(cfg)

	globalConfigCache = cfg
	return cfg, nil
}

func readGlobalConfig(path string) (*GlobalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyEnv(cfg *GlobalConfig) {
	if key := os.Getenv(EnvScopusAPIKey); key != "" {
		cfg.ScopusAPIKey = key
	}
	if key := os.Getenv(EnvS2APIKey); key != "" {
		cfg.S2APIKey = key
	}
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
