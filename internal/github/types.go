// Package github provides the issue snapshot model consumed by the report
// compiler, a fetcher that assembles snapshots via the gh CLI, and GitHub
// App authentication utilities.
package github

import (
	"fmt"
	"time"
)

// IssueRef uniquely identifies an issue or pull request.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

// Key returns the canonical "owner/repo#number" form used for
// distinct-issue counting.
func (r IssueRef) Key() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// URL returns the HTML URL of the issue.
func (r IssueRef) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/issues/%d", r.Owner, r.Repo, r.Number)
}

func (r IssueRef) String() string {
	return r.Key()
}

// User is a GitHub account reference.
type User struct {
	Login string `json:"login"`
}

// Label is an issue label reference.
type Label struct {
	Name string `json:"name"`
}

// Milestone is an issue milestone reference.
type Milestone struct {
	Title string `json:"title"`
}

// Comment is a single issue comment.
type Comment struct {
	ID                int64     `json:"id"`
	Body              string    `json:"body"`
	User              User      `json:"user"`
	AuthorAssociation string    `json:"author_association"`
	CreatedAt         time.Time `json:"created_at"`
}

// RawTimelineEvent is a loosely typed timeline entry as returned by the
// GitHub API. The event string determines which of the optional payload
// fields are meaningful; normalization into a tagged event happens in the
// report package, and entries missing their required payload are dropped
// there.
type RawTimelineEvent struct {
	Event     string     `json:"event"`
	Actor     *User      `json:"actor"`
	CreatedAt time.Time  `json:"created_at"`
	Label     *Label     `json:"label,omitempty"`
	Milestone *Milestone `json:"milestone,omitempty"`
	Assignee  *User      `json:"assignee,omitempty"`
}

// IssueSnapshot is a fully materialized issue: metadata plus all comments
// and timeline events. It is supplied whole by the fetcher and treated as
// read-only by the report compiler.
type IssueSnapshot struct {
	Number         int                `json:"number"`
	Title          string             `json:"title"`
	Body           string             `json:"body"`
	User           User               `json:"user"`
	State          string             `json:"state"`
	Labels         []Label            `json:"labels"`
	Milestone      *Milestone         `json:"milestone"`
	Assignees      []User             `json:"assignees"`
	CreatedAt      time.Time          `json:"created_at"`
	ClosedAt       *time.Time         `json:"closed_at"`
	Comments       []Comment          `json:"-"`
	TimelineEvents []RawTimelineEvent `json:"-"`
}

// Issue pairs a snapshot with its repository-qualified reference.
type Issue struct {
	Ref      IssueRef
	Snapshot *IssueSnapshot
}
