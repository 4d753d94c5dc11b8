package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner executes a command and returns its stdout. It exists so
// tests can stub out the gh CLI.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Fetcher assembles fully materialized issue snapshots for one repository
// by shelling out to the gh CLI. Pagination is delegated to gh via
// --paginate --slurp, so every snapshot arrives complete.
type Fetcher struct {
	owner  string
	repo   string
	runner CommandRunner
	logger *log.Logger
	env    []string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRunner sets a custom command runner (used in tests).
func WithRunner(runner CommandRunner) FetcherOption {
	return func(f *Fetcher) {
		f.runner = runner
	}
}

// WithToken passes a GitHub token to gh via GH_TOKEN, overriding any
// ambient gh authentication. Used with App installation tokens.
func WithToken(token string) FetcherOption {
	return func(f *Fetcher) {
		f.env = append(f.env, "GH_TOKEN="+token)
	}
}

// NewFetcher creates a Fetcher for a repository in "owner/name" form.
func NewFetcher(repository string, logger *log.Logger, opts ...FetcherOption) (*Fetcher, error) {
	owner, repo, err := ParseRepository(repository)
	if err != nil {
		return nil, err
	}

	f := &Fetcher{
		owner:  owner,
		repo:   repo,
		logger: logger,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// ParseRepository splits an "owner/name" repository string.
func ParseRepository(repository string) (owner, repo string, err error) {
	repository = strings.TrimPrefix(strings.TrimSpace(repository), "github.com/")
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q (want owner/name)", repository)
	}
	return parts[0], parts[1], nil
}

// IssuesUpdatedSince returns every issue and pull request updated at or
// after the cutoff, each with all comments and timeline events attached.
// A failure to fetch one issue's comments or timeline logs a warning and
// leaves that list empty rather than failing the whole fetch.
func (f *Fetcher) IssuesUpdatedSince(ctx context.Context, since time.Time) ([]Issue, error) {
	path := fmt.Sprintf("repos/%s/%s/issues?state=all&per_page=100&since=%s",
		f.owner, f.repo, since.UTC().Format(time.RFC3339))

	output, err := f.run(ctx, "api", path, "--paginate", "--slurp")
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for %s/%s: %w", f.owner, f.repo, err)
	}

	var pages [][]IssueSnapshot
	if err := json.Unmarshal(output, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse issue list: %w", err)
	}

	var issues []Issue
	for _, page := range pages {
		for i := range page {
			snapshot := page[i]
			ref := IssueRef{Owner: f.owner, Repo: f.repo, Number: snapshot.Number}

			snapshot.Comments = f.fetchComments(ctx, snapshot.Number)
			snapshot.TimelineEvents = f.fetchTimeline(ctx, snapshot.Number)

			issues = append(issues, Issue{Ref: ref, Snapshot: &snapshot})
		}
	}

	return issues, nil
}

// fetchComments loads all comments for one issue. Errors degrade to an
// empty list.
func (f *Fetcher) fetchComments(ctx context.Context, number int) []Comment {
	path := fmt.Sprintf("repos/%s/%s/issues/%d/comments?per_page=100", f.owner, f.repo, number)
	output, err := f.run(ctx, "api", path, "--paginate", "--slurp")
	if err != nil {
		f.logWarning("failed to fetch comments for #%d: %v", number, err)
		return nil
	}

	var pages [][]Comment
	if err := json.Unmarshal(output, &pages); err != nil {
		f.logWarning("failed to parse comments for #%d: %v", number, err)
		return nil
	}

	var comments []Comment
	for _, page := range pages {
		comments = append(comments, page...)
	}
	return comments
}

// fetchTimeline loads all timeline events for one issue. Errors degrade
// to an empty list.
func (f *Fetcher) fetchTimeline(ctx context.Context, number int) []RawTimelineEvent {
	path := fmt.Sprintf("repos/%s/%s/issues/%d/timeline?per_page=100", f.owner, f.repo, number)
	output, err := f.run(ctx, "api", path, "--paginate", "--slurp")
	if err != nil {
		f.logWarning("failed to fetch timeline for #%d: %v", number, err)
		return nil
	}

	var pages [][]RawTimelineEvent
	if err := json.Unmarshal(output, &pages); err != nil {
		f.logWarning("failed to parse timeline for #%d: %v", number, err)
		return nil
	}

	var events []RawTimelineEvent
	for _, page := range pages {
		events = append(events, page...)
	}
	return events
}

func (f *Fetcher) run(ctx context.Context, args ...string) ([]byte, error) {
	if f.runner != nil {
		return f.runner(ctx, "gh", args...)
	}
	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Env = append(os.Environ(), f.env...)
	return cmd.Output()
}

func (f *Fetcher) logWarning(format string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Printf("Warning: "+format, args...)
	}
}
