// Package classify defines the completion collaborator used by the report
// compiler: one-sentence issue summaries and comment classification for
// moderator/response follow-up. Each call signature returns exactly one
// discriminated response type, and every request carries a Context string
// for observability.
package classify

import (
	"context"
	"fmt"
)

// Action categories for comments that need follow-up.
const (
	CategoryModeration = "moderation"
	CategoryResponse   = "response"
)

// OneLineSummary is the response type for issue summarization.
type OneLineSummary struct {
	Text string `json:"text"`
}

// Action flags a comment for follow-up.
type Action struct {
	Category string `json:"category"` // "moderation" or "response"
	Reason   string `json:"reason"`
}

// CommentClassification is the response type for comment classification.
// ActionNeeded is nil when the comment needs no follow-up.
type CommentClassification struct {
	Summary      string  `json:"summary"`
	ActionNeeded *Action `json:"action_needed"`
}

// Validate checks that a parsed classification carries a known category.
func (c CommentClassification) Validate() error {
	if c.ActionNeeded == nil {
		return nil
	}
	switch c.ActionNeeded.Category {
	case CategoryModeration, CategoryResponse:
		return nil
	default:
		return fmt.Errorf("unknown action category %q", c.ActionNeeded.Category)
	}
}

// IssueSummaryRequest asks for a one-sentence summary of an issue.
type IssueSummaryRequest struct {
	Title string
	Body  string

	// Context identifies the call site for logging and tracing,
	// e.g. "issue-summary octo/widgets#7".
	Context string
}

// CommentRequest asks for a summary and follow-up classification of one
// comment.
type CommentRequest struct {
	Body  string
	Actor string

	// Context identifies the call site for logging and tracing.
	Context string
}

// Client is the completion collaborator. Implementations are assumed to be
// slow and fallible; callers must degrade locally on error rather than
// propagate.
type Client interface {
	SummarizeIssue(ctx context.Context, req IssueSummaryRequest) (OneLineSummary, error)
	ClassifyComment(ctx context.Context, req CommentRequest) (CommentClassification, error)
}
