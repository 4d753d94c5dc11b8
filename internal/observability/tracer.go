// Package observability provides tracing for report generation runs.
// A trace covers one report; each classifier/summarizer call is recorded
// as a generation under that trace.
package observability

import "context"

// Tracer records the lifecycle of a report run and the LLM calls made
// while compiling it.
type Tracer interface {
	StartTrace(runID string, opts TraceOptions) TraceContext
	RecordGeneration(trace TraceContext, gen GenerationInput)
	CompleteTrace(trace TraceContext, opts CompleteOptions)
	Flush(ctx context.Context) error
	Stop(ctx context.Context) error
}

// TraceContext identifies an active report trace.
type TraceContext struct {
	TraceID    string
	RunID      string
	Repository string
}

// TraceOptions configures a new trace.
type TraceOptions struct {
	Repository string
	ReportDate string
}

// GenerationInput describes one LLM invocation.
type GenerationInput struct {
	// Name is the call-site context string, e.g. "issue-summary octo/widgets#7".
	Name         string
	Model        string
	Input        string
	Output       string
	InputTokens  int
	OutputTokens int
	Status       string // "completed" or "error"
	DurationMs   int64
}

// CompleteOptions configures trace completion.
type CompleteOptions struct {
	Status      string // "completed" or "failed"
	IssueCount  int
	ActionItems int
}
