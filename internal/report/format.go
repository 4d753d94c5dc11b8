package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CommentMode selects how a commented event is displayed.
type CommentMode int

const (
	// CommentVerbatim quotes the markdown-stripped body.
	CommentVerbatim CommentMode = iota
	// CommentSummary shows the classifier's one-line summary instead of
	// quoting.
	CommentSummary
	// CommentFallback renders only the actor and a link; used when the
	// classifier failed on a comment that was too long to quote.
	CommentFallback
)

// CommentLine is the precomputed display decision for one commented event,
// keyed by comment ID in the Formatter.
type CommentLine struct {
	Mode    CommentMode
	Summary string
}

// Formatter renders events and coalesced runs into markdown bullets.
type Formatter struct {
	// ReportDate anchors the relative-time phrases.
	ReportDate time.Time
	// IssueURL is the issue's HTML URL, used for comment links.
	IssueURL string
	// Comments maps comment IDs to their display decision. Comments
	// absent from the map are quoted verbatim.
	Comments map[int64]CommentLine
}

// FormatEntry renders exactly one markdown bullet for an entry.
func (f *Formatter) FormatEntry(entry Entry) string {
	when := TimeDescription(entry.First().Date, f.ReportDate)

	if entry.IsGroup() {
		return fmt.Sprintf("- (%s) **%s** %s", when, entry.First().Actor, groupPhrase(entry.Events))
	}

	ev := entry.First()
	switch ev.Kind {
	case KindCreated:
		return fmt.Sprintf("- (%s) created by **%s**", when, ev.Actor)
	case KindClosed:
		return fmt.Sprintf("- (%s) **%s** closed the issue", when, ev.Actor)
	case KindReopened:
		return fmt.Sprintf("- (%s) **%s** reopened the issue", when, ev.Actor)
	case KindLabeled:
		return fmt.Sprintf("- (%s) **%s** added label `%s`", when, ev.Actor, ev.Label)
	case KindUnlabeled:
		return fmt.Sprintf("- (%s) **%s** removed label `%s`", when, ev.Actor, ev.Label)
	case KindMilestoned:
		return fmt.Sprintf("- (%s) **%s** added to milestone `%s`", when, ev.Actor, ev.Milestone)
	case KindDemilestoned:
		return fmt.Sprintf("- (%s) **%s** removed from milestone `%s`", when, ev.Actor, ev.Milestone)
	case KindAssigned:
		return fmt.Sprintf("- (%s) **%s** assigned to **%s**", when, ev.Actor, ev.Assignee)
	case KindUnassigned:
		return fmt.Sprintf("- (%s) **%s** unassigned **%s**", when, ev.Actor, ev.Assignee)
	case KindCommented:
		return f.formatComment(ev, when)
	default:
		return fmt.Sprintf("- (%s) **%s** %s", when, ev.Actor, ev.Kind)
	}
}

// formatComment renders a commented event according to its precomputed
// display decision.
func (f *Formatter) formatComment(ev Event, when string) string {
	link := fmt.Sprintf("%s#issuecomment-%d", f.IssueURL, ev.CommentID)

	line, ok := f.Comments[ev.CommentID]
	if !ok {
		line = CommentLine{Mode: CommentVerbatim}
	}

	switch line.Mode {
	case CommentSummary:
		return fmt.Sprintf("- (%s) [comment](%s): **%s** %s", when, link, ev.Actor, line.Summary)
	case CommentFallback:
		return fmt.Sprintf("- (%s) [comment](%s): **%s** commented", when, link, ev.Actor)
	default:
		return fmt.Sprintf("- (%s) [comment](%s): **%s** said %q", when, link, ev.Actor, StripMarkdown(ev.Body))
	}
}

// groupPhrase builds the natural-language statement for a coalesced run:
// one phrase per action family present, joined with commas and a final
// ", and ".
func groupPhrase(events []Event) string {
	var added, removed, set, cleared, assigned, unassigned []string

	for _, ev := range events {
		switch ev.Kind {
		case KindLabeled:
			added = append(added, "`"+ev.Label+"`")
		case KindUnlabeled:
			removed = append(removed, "`"+ev.Label+"`")
		case KindMilestoned:
			set = append(set, "`"+ev.Milestone+"`")
		case KindDemilestoned:
			cleared = append(cleared, "`"+ev.Milestone+"`")
		case KindAssigned:
			assigned = append(assigned, "**"+ev.Assignee+"**")
		case KindUnassigned:
			unassigned = append(unassigned, "**"+ev.Assignee+"**")
		}
	}

	var phrases []string
	if len(added) > 0 {
		phrases = append(phrases, pluralPhrase("added label", added))
	}
	if len(removed) > 0 {
		phrases = append(phrases, pluralPhrase("removed label", removed))
	}
	if len(set) > 0 {
		phrases = append(phrases, "set milestone to "+strings.Join(set, ", "))
	}
	if len(cleared) > 0 {
		phrases = append(phrases, "removed milestone "+strings.Join(cleared, ", "))
	}
	if len(assigned) > 0 {
		phrases = append(phrases, "assigned "+strings.Join(assigned, ", "))
	}
	if len(unassigned) > 0 {
		phrases = append(phrases, "unassigned "+strings.Join(unassigned, ", "))
	}

	return joinPhrases(phrases)
}

// pluralPhrase renders "added label `X`" or "added labels `X`, `Y`".
func pluralPhrase(stem string, names []string) string {
	if len(names) == 1 {
		return stem + " " + names[0]
	}
	return stem + "s " + strings.Join(names, ", ")
}

// joinPhrases joins phrases with commas and a final ", and ". The comma
// before "and" is kept even for two phrases because individual phrases may
// themselves contain comma-joined lists.
func joinPhrases(phrases []string) string {
	switch len(phrases) {
	case 0:
		return ""
	case 1:
		return phrases[0]
	default:
		return strings.Join(phrases[:len(phrases)-1], ", ") + ", and " + phrases[len(phrases)-1]
	}
}

// TimeDescription renders the day-granularity relative-time phrase for an
// event, anchored at the report date. Future-dated events render as
// "later"; exact multiples of 7 days up to three weeks use week phrasing;
// 28 through 34 days reads as one month.
func TimeDescription(eventDate, reportDate time.Time) string {
	days := dayDiff(eventDate, reportDate)

	switch {
	case days < 0:
		return "later"
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days == 7:
		return "1 week ago"
	case days == 14 || days == 21:
		return fmt.Sprintf("%d weeks ago", days/7)
	case days >= 28 && days <= 34:
		return "1 month ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 14:
		return "1 week ago"
	case days < 21:
		return "2 weeks ago"
	case days < 28:
		return "3 weeks ago"
	default:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
}

// dayDiff returns the whole days from eventDate to reportDate, ignoring
// time of day.
func dayDiff(eventDate, reportDate time.Time) int {
	event := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)
	report := time.Date(reportDate.Year(), reportDate.Month(), reportDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(report.Sub(event).Hours() / 24)
}

var (
	markdownLinkPattern   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownBoldPattern   = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	markdownItalicPattern = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	markdownCodePattern   = regexp.MustCompile("`([^`]*)`")
)

// StripMarkdown reduces inline markdown to plain text for verbatim quotes:
// links keep their text, emphasis and code markers are removed.
func StripMarkdown(s string) string {
	s = markdownLinkPattern.ReplaceAllString(s, "$1")
	s = markdownBoldPattern.ReplaceAllString(s, "$1$2")
	s = markdownItalicPattern.ReplaceAllString(s, "$1$2")
	s = markdownCodePattern.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// daySuffix returns the English ordinal suffix for a day of month.
func daySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// longDate renders a date as "Thursday, August 27th, 2026".
func longDate(date time.Time) string {
	return fmt.Sprintf("%s, %s %d%s, %d",
		date.Weekday(), date.Month(), date.Day(), daySuffix(date.Day()), date.Year())
}
