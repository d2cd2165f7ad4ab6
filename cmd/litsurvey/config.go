package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after defaults and environment overrides.
API keys are reported as present or absent, never printed.

The config file lives at $XDG_CONFIG_HOME/litsurvey/config.yml:

  output_dir: ~/surveys/processed
  threshold: 0.8
  checkpoint_every: 10
  scopus_api_key: ...
  s2_api_key: ...`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// ConfigResponse is the JSON output for the config command.
type ConfigResponse struct {
	Path string `json:"path"`
	config.Settings
}

func runConfig(cmd *cobra.Command, args []string) error {
	resp := ConfigResponse{Path: config.GlobalConfigPath(), Settings: settings}
	if !humanOutput {
		return outputJSON(resp)
	}
	outputHuman("Config file:      %s\n", resp.Path)
	outputHuman("Output dir:       %s\n", settings.OutputDir)
	outputHuman("Threshold:        %v\n", settings.Threshold)
	outputHuman("Checkpoint every: %d\n", settings.CheckpointEvery)
	outputHuman("Journal:          %s\n", settings.JournalPath)
	outputHuman("Log level:        %s\n", settings.LogLevel)
	outputHuman("Scopus key:       %v\n", settings.HasScopusAPIKey)
	outputHuman("S2 key:           %v\n", settings.HasS2APIKey)
	return nil
}
