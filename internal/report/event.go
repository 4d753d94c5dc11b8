// Package report implements the activity digest compiler. It merges each
// issue's creation, comments, and timeline events into one chronological
// sequence, collapses bursts of same-actor bookkeeping edits into single
// natural-language statements, classifies commentary for follow-up, and
// renders a deterministic markdown report for a bounded time window.
package report

import (
	"time"

	"github.com/andywolf/chronicle/internal/github"
)

// Kind identifies the category of a normalized issue event.
type Kind string

const (
	KindCreated      Kind = "created"
	KindCommented    Kind = "commented"
	KindClosed       Kind = "closed"
	KindReopened     Kind = "reopened"
	KindLabeled      Kind = "labeled"
	KindUnlabeled    Kind = "unlabeled"
	KindMilestoned   Kind = "milestoned"
	KindDemilestoned Kind = "demilestoned"
	KindAssigned     Kind = "assigned"
	KindUnassigned   Kind = "unassigned"
)

// Event is the normalized, tagged representation unifying issue creation,
// comments, and timeline edits. Kind determines which payload fields are
// meaningful.
type Event struct {
	Kind  Kind
	Date  time.Time
	Actor string

	// Payload for KindCommented.
	Body        string
	CommentID   int64
	Association string

	// Payload for KindLabeled / KindUnlabeled.
	Label string

	// Payload for KindMilestoned / KindDemilestoned.
	Milestone string

	// Payload for KindAssigned / KindUnassigned.
	Assignee string
}

// IsMetadata reports whether the event is a bookkeeping edit eligible for
// coalescing. Close/reopen and comments always break a run.
func (e Event) IsMetadata() bool {
	switch e.Kind {
	case KindLabeled, KindUnlabeled, KindMilestoned, KindDemilestoned, KindAssigned, KindUnassigned:
		return true
	default:
		return false
	}
}

// NormalizeTimelineEvent maps a loosely typed timeline entry onto a tagged
// Event. The second return value is false when the entry's kind is not one
// we render or its required payload is missing; such entries are dropped
// silently.
func NormalizeTimelineEvent(raw github.RawTimelineEvent) (Event, bool) {
	actor := ""
	if raw.Actor != nil {
		actor = raw.Actor.Login
	}

	ev := Event{Date: raw.CreatedAt, Actor: actor}

	switch raw.Event {
	case "closed":
		ev.Kind = KindClosed
	case "reopened":
		ev.Kind = KindReopened
	case "labeled", "unlabeled":
		if raw.Label == nil || raw.Label.Name == "" {
			return Event{}, false
		}
		ev.Kind = KindLabeled
		if raw.Event == "unlabeled" {
			ev.Kind = KindUnlabeled
		}
		ev.Label = raw.Label.Name
	case "milestoned", "demilestoned":
		if raw.Milestone == nil || raw.Milestone.Title == "" {
			return Event{}, false
		}
		ev.Kind = KindMilestoned
		if raw.Event == "demilestoned" {
			ev.Kind = KindDemilestoned
		}
		ev.Milestone = raw.Milestone.Title
	case "assigned", "unassigned":
		if raw.Assignee == nil || raw.Assignee.Login == "" {
			return Event{}, false
		}
		ev.Kind = KindAssigned
		if raw.Event == "unassigned" {
			ev.Kind = KindUnassigned
		}
		ev.Assignee = raw.Assignee.Login
	default:
		return Event{}, false
	}

	return ev, true
}
