package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the full Chronicle configuration
type Config struct {
	Project  ProjectConfig  `mapstructure:"project"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Report   ReportConfig   `mapstructure:"report"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
	Langfuse LangfuseConfig `mapstructure:"langfuse"`
}

// ProjectConfig contains project-level settings
type ProjectConfig struct {
	Name       string `mapstructure:"name"`
	Repository string `mapstructure:"repository"`
}

// GitHubConfig contains GitHub App authentication settings
type GitHubConfig struct {
	AppID            int64  `mapstructure:"app_id"`
	InstallationID   int64  `mapstructure:"installation_id"`
	PrivateKeySecret string `mapstructure:"private_key_secret"`
}

// OpenAIConfig contains settings for the completion collaborator
type OpenAIConfig struct {
	Model        string `mapstructure:"model"`
	APIKeySecret string `mapstructure:"api_key_secret"`
}

// ReportConfig contains report generation settings
type ReportConfig struct {
	Bots           []string `mapstructure:"bots"`
	CheckActions   bool     `mapstructure:"check_actions"`
	CoalesceWindow string   `mapstructure:"coalesce_window"`
	OutputDir      string   `mapstructure:"output_dir"`
}

// CloudConfig contains cloud provider settings
type CloudConfig struct {
	Project string `mapstructure:"project"` // GCP project ID
}

// LangfuseConfig contains tracing settings. The key fields are Secret
// Manager resource paths, resolved at startup like the GitHub and OpenAI
// secrets.
type LangfuseConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	PublicKeySecret string `mapstructure:"public_key_secret"`
	SecretKeySecret string `mapstructure:"secret_key_secret"`
	BaseURL         string `mapstructure:"base_url"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4.1-mini"
	}

	if len(cfg.Report.Bots) == 0 {
		cfg.Report.Bots = []string{"github-actions[bot]", "dependabot[bot]"}
	}

	if cfg.Report.CoalesceWindow == "" {
		cfg.Report.CoalesceWindow = "5m"
	}

	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = ".reports"
	}

	if cfg.Langfuse.BaseURL == "" {
		cfg.Langfuse.BaseURL = "https://cloud.langfuse.com"
	}
}

// CoalesceWindow parses the configured coalesce window. A zero duration
// disables the time bound between coalesced events.
func (c *Config) CoalesceWindow() (time.Duration, error) {
	if c.Report.CoalesceWindow == "" || c.Report.CoalesceWindow == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Report.CoalesceWindow)
	if err != nil {
		return 0, fmt.Errorf("invalid coalesce_window: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("coalesce_window must not be negative")
	}
	return d, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Project.Repository != "" {
		repo := strings.TrimPrefix(c.Project.Repository, "github.com/")
		if strings.Count(repo, "/") != 1 {
			return fmt.Errorf("invalid repository %q (must be owner/name)", c.Project.Repository)
		}
	}

	if _, err := c.CoalesceWindow(); err != nil {
		return err
	}

	return nil
}

// ValidateForGenerate performs the additional validation required before
// generating a report. GitHub App credentials and the OpenAI key are
// optional (generation degrades to ambient gh auth and verbatim
// rendering), but a partially configured App is rejected rather than
// silently falling back.
func (c *Config) ValidateForGenerate() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Project.Repository == "" {
		return fmt.Errorf("repository is required (set project.repository or pass --repo)")
	}

	if c.GitHub.AppID != 0 || c.GitHub.InstallationID != 0 || c.GitHub.PrivateKeySecret != "" {
		if c.GitHub.AppID == 0 {
			return fmt.Errorf("github.app_id is required when GitHub App credentials are configured")
		}
		if c.GitHub.InstallationID == 0 {
			return fmt.Errorf("github.installation_id is required when GitHub App credentials are configured")
		}
		if c.GitHub.PrivateKeySecret == "" {
			return fmt.Errorf("github.private_key_secret is required when GitHub App credentials are configured")
		}
	}

	return nil
}
