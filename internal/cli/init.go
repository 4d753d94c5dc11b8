package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andywolf/chronicle/internal/cli/wizard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize project configuration",
	Long: `Initialize Chronicle configuration for the current project.

This creates a .chronicle.yaml file with sensible defaults that you can
customize. With --interactive, a guided form collects the settings.

Example:
  chronicle init --repo github.com/org/myapp
  chronicle init --interactive`,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("name", "", "Project name")
	initCmd.Flags().String("repo", "", "GitHub repository (owner/name)")
	initCmd.Flags().Int64("app-id", 0, "GitHub App ID")
	initCmd.Flags().Int64("installation-id", 0, "GitHub App Installation ID")
	initCmd.Flags().String("gcp-project", "", "GCP project for Secret Manager")
	initCmd.Flags().BoolP("interactive", "i", false, "Collect settings via a guided form")
	initCmd.Flags().Bool("force", false, "Overwrite existing config")
}

type projectConfig struct {
	Project struct {
		Name       string `yaml:"name"`
		Repository string `yaml:"repository"`
	} `yaml:"project"`
	GitHub struct {
		AppID            int64  `yaml:"app_id,omitempty"`
		InstallationID   int64  `yaml:"installation_id,omitempty"`
		PrivateKeySecret string `yaml:"private_key_secret"`
	} `yaml:"github"`
	OpenAI struct {
		Model        string `yaml:"model"`
		APIKeySecret string `yaml:"api_key_secret"`
	} `yaml:"openai"`
	Report struct {
		Bots           []string `yaml:"bots"`
		CheckActions   bool     `yaml:"check_actions"`
		CoalesceWindow string   `yaml:"coalesce_window"`
		OutputDir      string   `yaml:"output_dir"`
	} `yaml:"report"`
	Cloud struct {
		Project string `yaml:"project,omitempty"`
	} `yaml:"cloud"`
}

func initProject(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(".", ".chronicle.yaml")

	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")
	if _, err := os.Stat(configPath); err == nil && !force {
		if !interactive {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
		}
		ok, err := wizard.ConfirmOverwrite(configPath)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("aborted, %s left unchanged", configPath)
		}
	}

	cfg := projectConfig{}

	// Get values from flags or defaults
	cfg.Project.Name, _ = cmd.Flags().GetString("name")
	cfg.Project.Repository, _ = cmd.Flags().GetString("repo")
	cfg.GitHub.AppID, _ = cmd.Flags().GetInt64("app-id")
	cfg.GitHub.InstallationID, _ = cmd.Flags().GetInt64("installation-id")
	cfg.Cloud.Project, _ = cmd.Flags().GetString("gcp-project")

	if interactive {
		answers, err := wizard.PromptProjectSetup(wizard.ProjectSetup{
			Repository:   cfg.Project.Repository,
			GCPProject:   cfg.Cloud.Project,
			CheckActions: cfg.Report.CheckActions,
		})
		if err != nil {
			return err
		}
		cfg.Project.Repository = answers.Repository
		cfg.Cloud.Project = answers.GCPProject
		cfg.Report.CheckActions = answers.CheckActions
	}

	// Set default values
	if cfg.Project.Name == "" {
		cwd, _ := os.Getwd()
		cfg.Project.Name = filepath.Base(cwd)
	}

	cfg.GitHub.PrivateKeySecret = fmt.Sprintf("projects/YOUR_PROJECT/secrets/%s-github-key", cfg.Project.Name)
	cfg.OpenAI.Model = "gpt-4.1-mini"
	cfg.OpenAI.APIKeySecret = fmt.Sprintf("projects/YOUR_PROJECT/secrets/%s-openai-key", cfg.Project.Name)
	cfg.Report.Bots = []string{"github-actions[bot]", "dependabot[bot]"}
	cfg.Report.CoalesceWindow = "5m"
	cfg.Report.OutputDir = ".reports"

	// Write config file
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# Chronicle Configuration
# See https://github.com/andywolf/chronicle for documentation

`

	if err := os.WriteFile(configPath, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n\n", configPath)
	fmt.Println("Next steps:")
	fmt.Println("  1. Update the repository")
	fmt.Println("  2. Set your GitHub App credentials and secret paths")
	fmt.Println("  3. Run 'chronicle generate --dry-run' to preview a report")

	return nil
}
