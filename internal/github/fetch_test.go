package github

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{in: "octo/widgets", wantOwner: "octo", wantRepo: "widgets"},
		{in: "github.com/octo/widgets", wantOwner: "octo", wantRepo: "widgets"},
		{in: " octo/widgets ", wantOwner: "octo", wantRepo: "widgets"},
		{in: "octo", wantErr: true},
		{in: "octo/widgets/extra", wantErr: true},
		{in: "/widgets", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, err := ParseRepository(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRepository(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRepository(%q) error: %v", tt.in, err)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseRepository(%q) = %q/%q, want %q/%q",
					tt.in, owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestIssueRefKeyAndURL(t *testing.T) {
	ref := IssueRef{Owner: "octo", Repo: "widgets", Number: 12}
	if got := ref.Key(); got != "octo/widgets#12" {
		t.Errorf("Key() = %q", got)
	}
	if got := ref.URL(); got != "https://github.com/octo/widgets/issues/12" {
		t.Errorf("URL() = %q", got)
	}
}

// fakeRunner serves canned gh responses keyed by a substring of the API path.
func fakeRunner(t *testing.T, responses map[string]string) CommandRunner {
	t.Helper()
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "gh" {
			t.Fatalf("unexpected command %q", name)
		}
		joined := strings.Join(args, " ")
		for substr, body := range responses {
			if strings.Contains(joined, substr) {
				return []byte(body), nil
			}
		}
		return nil, fmt.Errorf("no canned response for %q", joined)
	}
}

func TestIssuesUpdatedSince(t *testing.T) {
	responses := map[string]string{
		"/issues?": `[[
			{"number": 7, "title": "Crash on start", "body": "boom",
			 "user": {"login": "alice"}, "state": "open",
			 "labels": [{"name": "Bug"}],
			 "created_at": "2026-08-20T10:00:00Z"}
		]]`,
		"/issues/7/comments": `[[
			{"id": 101, "body": "same here", "user": {"login": "bob"},
			 "author_association": "NONE", "created_at": "2026-08-21T09:00:00Z"}
		]]`,
		"/issues/7/timeline": `[[
			{"event": "labeled", "actor": {"login": "alice"},
			 "created_at": "2026-08-21T10:00:00Z", "label": {"name": "Bug"}},
			{"event": "cross-referenced", "actor": {"login": "carol"}}
		]]`,
	}

	f, err := NewFetcher("octo/widgets", nil, WithRunner(fakeRunner(t, responses)))
	if err != nil {
		t.Fatalf("NewFetcher() error: %v", err)
	}

	issues, err := f.IssuesUpdatedSince(context.Background(), time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("IssuesUpdatedSince() error: %v", err)
	}

	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	issue := issues[0]
	if issue.Ref.Key() != "octo/widgets#7" {
		t.Errorf("ref = %s", issue.Ref.Key())
	}
	if issue.Snapshot.Title != "Crash on start" {
		t.Errorf("title = %q", issue.Snapshot.Title)
	}
	if len(issue.Snapshot.Comments) != 1 || issue.Snapshot.Comments[0].User.Login != "bob" {
		t.Errorf("comments = %+v", issue.Snapshot.Comments)
	}
	if len(issue.Snapshot.TimelineEvents) != 2 {
		t.Errorf("timeline events = %d, want 2", len(issue.Snapshot.TimelineEvents))
	}
	if issue.Snapshot.TimelineEvents[0].Label == nil || issue.Snapshot.TimelineEvents[0].Label.Name != "Bug" {
		t.Errorf("first timeline event label = %+v", issue.Snapshot.TimelineEvents[0].Label)
	}
}

func TestIssuesUpdatedSinceDegradesPerIssue(t *testing.T) {
	// Comments and timeline endpoints fail; the issue should still be
	// returned with empty lists.
	responses := map[string]string{
		"/issues?": `[[
			{"number": 9, "title": "Feature request", "user": {"login": "alice"},
			 "state": "open", "created_at": "2026-08-20T10:00:00Z"}
		]]`,
	}

	f, err := NewFetcher("octo/widgets", nil, WithRunner(fakeRunner(t, responses)))
	if err != nil {
		t.Fatalf("NewFetcher() error: %v", err)
	}

	issues, err := f.IssuesUpdatedSince(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("IssuesUpdatedSince() error: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if len(issues[0].Snapshot.Comments) != 0 || len(issues[0].Snapshot.TimelineEvents) != 0 {
		t.Errorf("expected empty comments and timeline, got %+v", issues[0].Snapshot)
	}
}

func TestIssuesUpdatedSinceListFailure(t *testing.T) {
	f, err := NewFetcher("octo/widgets", nil, WithRunner(
		func(context.Context, string, ...string) ([]byte, error) {
			return nil, fmt.Errorf("gh: command not found")
		}))
	if err != nil {
		t.Fatalf("NewFetcher() error: %v", err)
	}
	if _, err := f.IssuesUpdatedSince(context.Background(), time.Now()); err == nil {
		t.Error("expected error when the issue list cannot be fetched")
	}
}
