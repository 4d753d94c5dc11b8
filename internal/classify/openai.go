package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/andywolf/chronicle/internal/observability"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4.1-mini"

// defaultMaxTokens bounds completion output; summaries and classifications
// are single sentences plus a small JSON envelope.
const defaultMaxTokens = 400

const summarySystemPrompt = `You summarize GitHub issues for a daily activity report.
Given an issue title and body, respond with a JSON object of the form
{"text": "<one sentence>"} and nothing else. The sentence must describe
what the issue is about in plain language.`

const classifySystemPrompt = `You review GitHub issue comments for a repository maintainer.
Respond with a JSON object of the form
{"summary": "<one short sentence starting with a past-tense verb, e.g. "asked about release timing">",
 "action_needed": null}
or, if the comment needs follow-up, set action_needed to
{"category": "moderation", "reason": "<why>"} for abusive, spammy, or
off-topic content, or {"category": "response", "reason": "<why>"} for a
question or report that a maintainer should answer.
Respond with the JSON object and nothing else.`

// OpenAIClient implements Client against the OpenAI chat completions API.
type OpenAIClient struct {
	cli       openai.Client
	model     string
	maxTokens int
	logger    *log.Logger

	tracer observability.Tracer
	trace  observability.TraceContext
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel overrides the completion model.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if strings.TrimSpace(model) != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the completion token limit.
func WithMaxTokens(n int) OpenAIOption {
	return func(c *OpenAIClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTracer records every completion call as a generation on the given
// tracer.
func WithTracer(tracer observability.Tracer) OpenAIOption {
	return func(c *OpenAIClient) {
		c.tracer = tracer
	}
}

// NewOpenAIClient creates a classifier backed by the OpenAI API.
func NewOpenAIClient(apiKey string, logger *log.Logger, opts ...OpenAIOption) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai: missing API key")
	}

	c := &OpenAIClient{
		cli:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:     DefaultModel,
		maxTokens: defaultMaxTokens,
		logger:    logger,
		tracer:    &observability.NoOpTracer{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SetTrace attaches subsequent generations to the given report trace.
func (c *OpenAIClient) SetTrace(trace observability.TraceContext) {
	c.trace = trace
}

// SummarizeIssue returns a one-sentence summary of an issue.
func (c *OpenAIClient) SummarizeIssue(ctx context.Context, req IssueSummaryRequest) (OneLineSummary, error) {
	input := fmt.Sprintf("Title: %s\n\nBody:\n%s", req.Title, req.Body)

	raw, err := c.complete(ctx, req.Context, summarySystemPrompt, input)
	if err != nil {
		return OneLineSummary{}, err
	}

	summary, err := parseSummary(raw)
	if err != nil {
		return OneLineSummary{}, fmt.Errorf("%s: %w", req.Context, err)
	}
	return summary, nil
}

// ClassifyComment summarizes one comment and probes whether it needs
// moderator or maintainer follow-up.
func (c *OpenAIClient) ClassifyComment(ctx context.Context, req CommentRequest) (CommentClassification, error) {
	input := fmt.Sprintf("Comment by %s:\n\n%s", req.Actor, req.Body)

	raw, err := c.complete(ctx, req.Context, classifySystemPrompt, input)
	if err != nil {
		return CommentClassification{}, err
	}

	classification, err := parseClassification(raw)
	if err != nil {
		return CommentClassification{}, fmt.Errorf("%s: %w", req.Context, err)
	}
	return classification, nil
}

// complete runs one chat completion and records it as a generation.
func (c *OpenAIClient) complete(ctx context.Context, callContext, system, user string) (string, error) {
	start := time.Now()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(0),
	}

	resp, err := c.cli.Chat.Completions.New(ctx, params)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		c.tracer.RecordGeneration(c.trace, observability.GenerationInput{
			Name:       callContext,
			Model:      c.model,
			Input:      user,
			Status:     "error",
			DurationMs: durationMs,
		})
		return "", fmt.Errorf("%s: completion failed: %w", callContext, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: completion returned no choices", callContext)
	}

	content := resp.Choices[0].Message.Content

	c.tracer.RecordGeneration(c.trace, observability.GenerationInput{
		Name:         callContext,
		Model:        c.model,
		Input:        user,
		Output:       content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		Status:       "completed",
		DurationMs:   durationMs,
	})

	if c.logger != nil {
		c.logger.Printf("completion %s: model=%s tokens=%d/%d duration=%dms",
			callContext, c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, durationMs)
	}

	return content, nil
}

// parseSummary decodes a OneLineSummary from model output.
func parseSummary(raw string) (OneLineSummary, error) {
	var summary OneLineSummary
	if err := json.Unmarshal([]byte(extractJSON(raw)), &summary); err != nil {
		return OneLineSummary{}, fmt.Errorf("failed to parse summary response: %w", err)
	}
	if strings.TrimSpace(summary.Text) == "" {
		return OneLineSummary{}, errors.New("summary response has empty text")
	}
	return summary, nil
}

// parseClassification decodes a CommentClassification from model output.
func parseClassification(raw string) (CommentClassification, error) {
	var classification CommentClassification
	if err := json.Unmarshal([]byte(extractJSON(raw)), &classification); err != nil {
		return CommentClassification{}, fmt.Errorf("failed to parse classification response: %w", err)
	}
	if err := classification.Validate(); err != nil {
		return CommentClassification{}, err
	}
	return classification, nil
}

// extractJSON strips code fences and surrounding prose, returning the
// outermost JSON object in the text. Models occasionally wrap JSON in
// markdown despite instructions.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}
