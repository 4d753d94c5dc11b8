// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strings"

	"github.com/andywolf/chronicle/internal/github"
	"github.com/charmbracelet/huh"
)

// ProjectSetup holds the answers collected during interactive init.
type ProjectSetup struct {
	Repository   string
	GCPProject   string
	CheckActions bool
}

// PromptProjectSetup collects project configuration via a guided form.
// Existing values are used as defaults.
func PromptProjectSetup(defaults ProjectSetup) (ProjectSetup, error) {
	answers := defaults

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Chronicle Setup").
				Description("Configure the repository to report on and where secrets live."),

			huh.NewInput().
				Title("GitHub Repository (owner/name)").
				Value(&answers.Repository).
				Validate(validateRepository),

			huh.NewInput().
				Title("GCP Project for Secret Manager (optional)").
				Value(&answers.GCPProject),

			huh.NewConfirm().
				Title("Classify short comments for follow-up needs?").
				Value(&answers.CheckActions),
		),
	)

	if err := form.Run(); err != nil {
		return ProjectSetup{}, fmt.Errorf("prompt cancelled: %w", err)
	}

	return answers, nil
}

// ConfirmOverwrite asks whether an existing config file should be replaced.
func ConfirmOverwrite(path string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Existing Configuration Found").
				Description(fmt.Sprintf("%s already exists and will be overwritten.", path)),

			huh.NewConfirm().
				Title("Continue?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

func validateRepository(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("repository is required")
	}
	_, _, err := github.ParseRepository(s)
	return err
}
