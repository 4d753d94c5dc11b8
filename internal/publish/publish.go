// Package publish delivers rendered reports: to the local report archive,
// and optionally to a GitHub gist for sharing.
package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// reportHour is the local hour at which a report day rolls over. A report
// generated at any point during the day covers the 24 hours ending at the
// most recent 8AM.
const reportHour = 8

// DefaultOutputDir is the root of the local report archive.
const DefaultOutputDir = ".reports"

// Window returns the reporting window ending at the most recent 8AM at or
// before now, in now's location. The window is half-open: [start, end).
func Window(now time.Time) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), now.Day(), reportHour, 0, 0, 0, now.Location())
	if now.Before(end) {
		end = end.AddDate(0, 0, -1)
	}
	return end.AddDate(0, 0, -1), end
}

// CommandRunner executes an external command and returns its stdout. Tests
// substitute a fake.
type CommandRunner func(ctx context.Context, stdin string, name string, args ...string) ([]byte, error)

// Publisher writes reports to the archive and creates gists.
type Publisher struct {
	outputDir string
	runner    CommandRunner
	logger    *log.Logger
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithOutputDir overrides the archive root.
func WithOutputDir(dir string) Option {
	return func(p *Publisher) {
		if dir != "" {
			p.outputDir = dir
		}
	}
}

// WithRunner substitutes the command runner. Used by tests.
func WithRunner(runner CommandRunner) Option {
	return func(p *Publisher) { p.runner = runner }
}

// NewPublisher creates a Publisher writing under DefaultOutputDir unless
// overridden.
func NewPublisher(logger *log.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		outputDir: DefaultOutputDir,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = runGH
	}
	return p
}

// ReportPath returns the archive path for one repository's report on the
// given date: <outputDir>/<owner>/<repo>/<yyyy-mm-dd>.md.
func (p *Publisher) ReportPath(owner, repo string, date time.Time) string {
	return filepath.Join(p.outputDir, owner, repo, date.Format("2006-01-02")+".md")
}

// Write stores the report in the archive, creating intermediate
// directories, and returns the written path.
func (p *Publisher) Write(owner, repo string, date time.Time, content string) (string, error) {
	path := p.ReportPath(owner, repo, date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	p.logInfo("wrote report to %s", path)
	return path, nil
}

// Gist creates a secret gist holding the report via the gh CLI and returns
// the gist URL.
func (p *Publisher) Gist(ctx context.Context, owner, repo string, date time.Time, content string) (string, error) {
	filename := fmt.Sprintf("%s-%s-%s.md", owner, repo, date.Format("2006-01-02"))
	description := fmt.Sprintf("Activity report for %s/%s on %s", owner, repo, date.Format("2006-01-02"))

	out, err := p.runner(ctx, content, "gh", "gist", "create",
		"--desc", description,
		"--filename", filename,
		"-")
	if err != nil {
		return "", fmt.Errorf("creating gist: %w", err)
	}

	url := strings.TrimSpace(string(out))
	if url == "" {
		return "", fmt.Errorf("gh gist create returned no URL")
	}
	p.logInfo("created gist %s", url)
	return url, nil
}

func runGH(ctx context.Context, stdin string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

func (p *Publisher) logInfo(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
