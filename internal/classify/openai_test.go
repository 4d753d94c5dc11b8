package classify

import (
	"strings"
	"testing"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantText string
		wantErr  bool
	}{
		{
			name:     "plain JSON",
			raw:      `{"text": "Reports a crash on startup when the config file is missing."}`,
			wantText: "Reports a crash on startup when the config file is missing.",
		},
		{
			name:     "fenced JSON",
			raw:      "```json\n{\"text\": \"Asks for dark mode support.\"}\n```",
			wantText: "Asks for dark mode support.",
		},
		{
			name:     "JSON with surrounding prose",
			raw:      "Here is the summary:\n{\"text\": \"Tracks flaky CI runs.\"}\nHope that helps!",
			wantText: "Tracks flaky CI runs.",
		},
		{
			name:    "empty text",
			raw:     `{"text": "  "}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			raw:     "the issue is about a crash",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSummary(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseSummary(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSummary(%q) error: %v", tt.raw, err)
			}
			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantSummary  string
		wantCategory string // empty means no action expected
		wantErr      bool
	}{
		{
			name:        "no action",
			raw:         `{"summary": "thanked the maintainers", "action_needed": null}`,
			wantSummary: "thanked the maintainers",
		},
		{
			name:         "response needed",
			raw:          `{"summary": "asked how to configure proxies", "action_needed": {"category": "response", "reason": "unanswered question"}}`,
			wantSummary:  "asked how to configure proxies",
			wantCategory: CategoryResponse,
		},
		{
			name:         "moderation needed",
			raw:          `{"summary": "posted promotional spam", "action_needed": {"category": "moderation", "reason": "spam"}}`,
			wantSummary:  "posted promotional spam",
			wantCategory: CategoryModeration,
		},
		{
			name:    "unknown category",
			raw:     `{"summary": "said something", "action_needed": {"category": "escalation", "reason": "?"}}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			raw:     "looks fine to me",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseClassification(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseClassification(%q) error: %v", tt.raw, err)
			}
			if got.Summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if tt.wantCategory == "" {
				if got.ActionNeeded != nil {
					t.Errorf("action_needed = %+v, want nil", got.ActionNeeded)
				}
			} else {
				if got.ActionNeeded == nil || got.ActionNeeded.Category != tt.wantCategory {
					t.Errorf("action_needed = %+v, want category %q", got.ActionNeeded, tt.wantCategory)
				}
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no braces here", "no braces here"},
		{`prefix {"a":{"b":2}} suffix`, `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient("", nil); err == nil {
		t.Error("expected error for empty API key")
	}
	if _, err := NewOpenAIClient("  ", nil); err == nil {
		t.Error("expected error for blank API key")
	}
}

func TestOpenAIClientOptions(t *testing.T) {
	c, err := NewOpenAIClient("sk-test", nil, WithModel("gpt-4.1"), WithMaxTokens(123))
	if err != nil {
		t.Fatalf("NewOpenAIClient() error: %v", err)
	}
	if c.model != "gpt-4.1" {
		t.Errorf("model = %q, want gpt-4.1", c.model)
	}
	if c.maxTokens != 123 {
		t.Errorf("maxTokens = %d, want 123", c.maxTokens)
	}

	// Blank model and non-positive token limits keep the defaults.
	c, err = NewOpenAIClient("sk-test", nil, WithModel(" "), WithMaxTokens(0))
	if err != nil {
		t.Fatalf("NewOpenAIClient() error: %v", err)
	}
	if c.model != DefaultModel {
		t.Errorf("model = %q, want %q", c.model, DefaultModel)
	}
	if c.maxTokens != defaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", c.maxTokens, defaultMaxTokens)
	}
}

func TestClassifySystemPromptMentionsCategories(t *testing.T) {
	// The prompt is the contract with the model; both category strings
	// must appear verbatim.
	for _, category := range []string{CategoryModeration, CategoryResponse} {
		if !strings.Contains(classifySystemPrompt, category) {
			t.Errorf("classify prompt missing category %q", category)
		}
	}
}
