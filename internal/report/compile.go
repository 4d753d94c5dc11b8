package report

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andywolf/chronicle/internal/classify"
	"github.com/andywolf/chronicle/internal/github"
)

// longCommentLength is the body length above which a comment is summarized
// instead of quoted. Any comment containing a newline is also summarized.
const longCommentLength = 200

// excludedAssociations are commenter relationships that never yield action
// items; people with repo standing are expected to handle their own
// follow-up.
var excludedAssociations = map[string]struct{}{
	"CONTRIBUTOR": {},
	"OWNER":       {},
	"MEMBER":      {},
}

// ActionCategory classifies a recommended action.
type ActionCategory string

const (
	ActionModeration ActionCategory = "moderation"
	ActionResponse   ActionCategory = "response"
)

// ActionItem flags a comment that needs moderator or maintainer follow-up.
type ActionItem struct {
	Category    ActionCategory
	Description string
	Ref         github.IssueRef
	URL         string
}

// Options configures report generation.
type Options struct {
	// CoalesceWindow bounds the gap between coalesced metadata events.
	// Zero disables the time bound (adjacency only).
	CoalesceWindow time.Duration

	// CheckActions probes short comments for follow-up needs. Long
	// comments are always classified because their summary is needed
	// for display.
	CheckActions bool

	// Bots lists actor logins whose comments never produce action items.
	Bots []string
}

// Generator compiles activity reports. It owns no persistent state; every
// Daily call builds its output from the supplied snapshots alone.
type Generator struct {
	classifier classify.Client
	logger     *log.Logger
	opts       Options
	bots       map[string]struct{}
}

// NewGenerator creates a report generator. A nil classifier disables
// summaries and action probing; every comment then renders verbatim or as
// a fallback line.
func NewGenerator(classifier classify.Client, logger *log.Logger, opts Options) *Generator {
	bots := make(map[string]struct{}, len(opts.Bots))
	for _, bot := range opts.Bots {
		bots[bot] = struct{}{}
	}

	return &Generator{
		classifier: classifier,
		logger:     logger,
		opts:       opts,
		bots:       bots,
	}
}

// Daily compiles the activity digest for issues with qualifying events in
// [start, end) and returns it together with the action items it surfaced.
// Issues are processed sequentially in input order so the report is
// deterministic. Classifier failures degrade locally; the call itself
// always produces a report.
func (g *Generator) Daily(ctx context.Context, date time.Time, issues []github.Issue, start, end time.Time) (string, []ActionItem) {
	active, stats := SelectActive(issues, start, end)

	var actions []ActionItem
	var sections []string

	for _, issue := range active {
		section, items := g.issueSection(ctx, issue, date, start, end)
		sections = append(sections, section)
		actions = append(actions, items...)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Report for %s (%s)\n\n", date.Format("2006-01-02"), longDate(date))
	fmt.Fprintf(&sb, "%d different users commented on %d different issues.\n\n",
		stats.UserCount(), stats.IssueCount())

	if len(actions) > 0 {
		sb.WriteString("## Recommended Actions\n\n")
		writeActionGroup(&sb, "Moderation", actions, ActionModeration)
		writeActionGroup(&sb, "Response Recommended", actions, ActionResponse)
	}

	sb.WriteString("## Activity Summary\n")
	for _, section := range sections {
		sb.WriteString("\n")
		sb.WriteString(section)
	}

	return sb.String(), actions
}

// writeActionGroup renders one category's bullet group, skipping empty
// categories entirely.
func writeActionGroup(sb *strings.Builder, heading string, actions []ActionItem, category ActionCategory) {
	var lines []string
	for _, item := range actions {
		if item.Category == category {
			lines = append(lines, fmt.Sprintf("- %s in [%s](%s)", item.Description, item.Ref.Key(), item.URL))
		}
	}
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(sb, "### %s\n\n", heading)
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// issueSection renders one issue's header and bullet list, returning any
// action items its comments produced.
func (g *Generator) issueSection(ctx context.Context, issue github.Issue, date, start, end time.Time) (string, []ActionItem) {
	url := issue.Ref.URL()
	tl := BuildTimeline(issue.Snapshot, start, end)

	// Decide rendering for every comment that will appear, collecting
	// action items along the way.
	commentLines := make(map[int64]CommentLine)
	var actions []ActionItem
	for _, ev := range append(append([]Event{}, tl.Before...), tl.InWindow...) {
		if ev.Kind != KindCommented {
			continue
		}
		line, item := g.classifyComment(ctx, issue.Ref, ev)
		commentLines[ev.CommentID] = line
		if item != nil && inWindow(ev.Date, start, end) {
			actions = append(actions, *item)
		}
	}

	formatter := &Formatter{
		ReportDate: date,
		IssueURL:   url,
		Comments:   commentLines,
	}

	var entries []Entry
	entries = append(entries, Coalesce(tl.Before, g.opts.CoalesceWindow)...)
	entries = append(entries, Coalesce(tl.InWindow, g.opts.CoalesceWindow)...)

	var sb strings.Builder
	fmt.Fprintf(&sb, "### [%s](%s): %s\n\n", issue.Ref.Key(), url, issue.Snapshot.Title)
	fmt.Fprintf(&sb, "%s\n\n", g.issueSummary(ctx, issue))
	for _, entry := range entries {
		sb.WriteString(formatter.FormatEntry(entry))
		sb.WriteString("\n")
	}

	return sb.String(), actions
}

// issueSummary asks the classifier for a one-sentence issue summary,
// falling back to the raw title on any failure.
func (g *Generator) issueSummary(ctx context.Context, issue github.Issue) string {
	if g.classifier == nil {
		return issue.Snapshot.Title
	}

	summary, err := g.classifier.SummarizeIssue(ctx, classify.IssueSummaryRequest{
		Title:   issue.Snapshot.Title,
		Body:    issue.Snapshot.Body,
		Context: "issue-summary " + issue.Ref.Key(),
	})
	if err != nil {
		g.logWarning("issue summary failed for %s: %v", issue.Ref.Key(), err)
		return issue.Snapshot.Title
	}
	return summary.Text
}

// classifyComment is the per-comment combinator: it decides how one
// commented event is displayed and whether it yields an action item. The
// classifier is consulted for long comments (their summary replaces
// verbatim quoting) and, when CheckActions is set, for short comments by
// action-eligible commenters. Every classifier failure degrades to a
// deterministic local rendering.
func (g *Generator) classifyComment(ctx context.Context, ref github.IssueRef, ev Event) (CommentLine, *ActionItem) {
	long := len(ev.Body) > longCommentLength || strings.Contains(ev.Body, "\n")
	eligible := g.actionEligible(ev)

	if g.classifier == nil {
		if long {
			return CommentLine{Mode: CommentFallback}, nil
		}
		return CommentLine{Mode: CommentVerbatim}, nil
	}

	if !long && (!g.opts.CheckActions || !eligible) {
		return CommentLine{Mode: CommentVerbatim}, nil
	}

	classification, err := g.classifier.ClassifyComment(ctx, classify.CommentRequest{
		Body:    ev.Body,
		Actor:   ev.Actor,
		Context: fmt.Sprintf("comment-classify %s comment %d", ref.Key(), ev.CommentID),
	})
	if err != nil {
		g.logWarning("comment classification failed for %s comment %d: %v", ref.Key(), ev.CommentID, err)
		return fallbackCommentLine(long), nil
	}

	line := CommentLine{Mode: CommentVerbatim}
	if long {
		line = CommentLine{Mode: CommentSummary, Summary: classification.Summary}
	}

	item := g.actionItem(ref, ev, classification, eligible)
	return line, item
}

// fallbackCommentLine is the rendering used when classification fails: a
// short comment is still quoted verbatim, a long one gets link-only.
func fallbackCommentLine(long bool) CommentLine {
	if long {
		return CommentLine{Mode: CommentFallback}
	}
	return CommentLine{Mode: CommentVerbatim}
}

// actionItem converts a classification into an action item, or nil when
// the commenter is ineligible or no follow-up is needed.
func (g *Generator) actionItem(ref github.IssueRef, ev Event, classification classify.CommentClassification, eligible bool) *ActionItem {
	if !eligible || classification.ActionNeeded == nil {
		return nil
	}

	category := ActionResponse
	if classification.ActionNeeded.Category == classify.CategoryModeration {
		category = ActionModeration
	}

	description := classification.ActionNeeded.Reason
	if description == "" {
		description = fmt.Sprintf("comment by **%s** needs attention", ev.Actor)
	}

	return &ActionItem{
		Category:    category,
		Description: description,
		Ref:         ref,
		URL:         fmt.Sprintf("%s#issuecomment-%d", ref.URL(), ev.CommentID),
	}
}

// actionEligible reports whether a comment's author can produce action
// items: not a configured bot, and not associated with the repository as
// contributor, member, or owner.
func (g *Generator) actionEligible(ev Event) bool {
	if _, isBot := g.bots[ev.Actor]; isBot {
		return false
	}
	_, excluded := excludedAssociations[ev.Association]
	return !excluded
}

func (g *Generator) logWarning(format string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Printf("Warning: "+format, args...)
	}
}
