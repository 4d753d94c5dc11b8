package report

import (
	"sort"
	"time"

	"github.com/andywolf/chronicle/internal/github"
)

// contextEventCount is how many pre-window events are kept as recent
// context at the top of an issue's bullet list.
const contextEventCount = 3

// Timeline is one issue's unified event sequence, split around the report
// window. Before holds the last few events strictly before the window
// start; InWindow holds the events with start <= date < end.
type Timeline struct {
	Before   []Event
	InWindow []Event
}

// inWindow reports whether t falls inside the half-open window [start, end).
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// BuildTimeline converts one issue's creation, comments, and timeline
// events into a single time-sorted sequence and splits it around the
// window. The sort is stable, so events with equal timestamps keep their
// encounter order: creation, then comments, then timeline events, each in
// source order.
func BuildTimeline(issue *github.IssueSnapshot, start, end time.Time) Timeline {
	events := make([]Event, 0, 1+len(issue.Comments)+len(issue.TimelineEvents))

	events = append(events, Event{
		Kind:  KindCreated,
		Date:  issue.CreatedAt,
		Actor: issue.User.Login,
	})

	for _, comment := range issue.Comments {
		events = append(events, Event{
			Kind:        KindCommented,
			Date:        comment.CreatedAt,
			Actor:       comment.User.Login,
			Body:        comment.Body,
			CommentID:   comment.ID,
			Association: comment.AuthorAssociation,
		})
	}

	for _, raw := range issue.TimelineEvents {
		if ev, ok := NormalizeTimelineEvent(raw); ok {
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	var tl Timeline
	for _, ev := range events {
		switch {
		case ev.Date.Before(start):
			tl.Before = append(tl.Before, ev)
		case ev.Date.Before(end):
			tl.InWindow = append(tl.InWindow, ev)
		}
		// Events at or after end are outside the report entirely.
	}

	if len(tl.Before) > contextEventCount {
		tl.Before = tl.Before[len(tl.Before)-contextEventCount:]
	}

	return tl
}
