package report

import (
	"time"

	"github.com/andywolf/chronicle/internal/github"
)

// Stats accumulates the distinct-user and distinct-issue counts shown in
// the report header.
type Stats struct {
	users  map[string]struct{}
	issues map[string]struct{}
}

func newStats() *Stats {
	return &Stats{
		users:  make(map[string]struct{}),
		issues: make(map[string]struct{}),
	}
}

// UserCount returns the number of distinct users who commented (or opened
// an issue) inside the window.
func (s *Stats) UserCount() int { return len(s.users) }

// IssueCount returns the number of distinct issues with qualifying
// activity inside the window.
func (s *Stats) IssueCount() int { return len(s.issues) }

// SelectActive filters issues down to those with at least one qualifying
// event inside [start, end): creation, a comment, a close, or any timeline
// event. It also accumulates the header statistics: distinct commenter
// logins (plus the author, only when the issue itself was created
// in-window) and distinct issue keys.
func SelectActive(issues []github.Issue, start, end time.Time) ([]github.Issue, *Stats) {
	stats := newStats()

	var active []github.Issue
	for _, issue := range issues {
		snap := issue.Snapshot
		qualifies := false

		if inWindow(snap.CreatedAt, start, end) {
			qualifies = true
			if snap.User.Login != "" {
				stats.users[snap.User.Login] = struct{}{}
			}
		}

		for _, comment := range snap.Comments {
			if inWindow(comment.CreatedAt, start, end) {
				qualifies = true
				if comment.User.Login != "" {
					stats.users[comment.User.Login] = struct{}{}
				}
			}
		}

		if snap.ClosedAt != nil && inWindow(*snap.ClosedAt, start, end) {
			qualifies = true
		}

		for _, raw := range snap.TimelineEvents {
			if inWindow(raw.CreatedAt, start, end) {
				qualifies = true
			}
		}

		if qualifies {
			stats.issues[issue.Ref.Key()] = struct{}{}
			active = append(active, issue)
		}
	}

	return active, stats
}
