package report

import (
	"testing"
	"time"

	"github.com/andywolf/chronicle/internal/github"
)

func TestNormalizeTimelineEvent(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	actor := &github.User{Login: "alice"}

	tests := []struct {
		name     string
		raw      github.RawTimelineEvent
		wantOK   bool
		wantKind Kind
	}{
		{
			name:     "closed",
			raw:      github.RawTimelineEvent{Event: "closed", Actor: actor, CreatedAt: ts},
			wantOK:   true,
			wantKind: KindClosed,
		},
		{
			name:     "reopened",
			raw:      github.RawTimelineEvent{Event: "reopened", Actor: actor, CreatedAt: ts},
			wantOK:   true,
			wantKind: KindReopened,
		},
		{
			name:     "labeled",
			raw:      github.RawTimelineEvent{Event: "labeled", Actor: actor, CreatedAt: ts, Label: &github.Label{Name: "bug"}},
			wantOK:   true,
			wantKind: KindLabeled,
		},
		{
			name:     "unlabeled",
			raw:      github.RawTimelineEvent{Event: "unlabeled", Actor: actor, CreatedAt: ts, Label: &github.Label{Name: "bug"}},
			wantOK:   true,
			wantKind: KindUnlabeled,
		},
		{
			name:   "labeled without label payload",
			raw:    github.RawTimelineEvent{Event: "labeled", Actor: actor, CreatedAt: ts},
			wantOK: false,
		},
		{
			name:     "milestoned",
			raw:      github.RawTimelineEvent{Event: "milestoned", Actor: actor, CreatedAt: ts, Milestone: &github.Milestone{Title: "v1"}},
			wantOK:   true,
			wantKind: KindMilestoned,
		},
		{
			name:   "milestoned without milestone payload",
			raw:    github.RawTimelineEvent{Event: "milestoned", Actor: actor, CreatedAt: ts},
			wantOK: false,
		},
		{
			name:     "assigned",
			raw:      github.RawTimelineEvent{Event: "assigned", Actor: actor, CreatedAt: ts, Assignee: &github.User{Login: "bob"}},
			wantOK:   true,
			wantKind: KindAssigned,
		},
		{
			name:     "unassigned",
			raw:      github.RawTimelineEvent{Event: "unassigned", Actor: actor, CreatedAt: ts, Assignee: &github.User{Login: "bob"}},
			wantOK:   true,
			wantKind: KindUnassigned,
		},
		{
			name:   "unknown event kind",
			raw:    github.RawTimelineEvent{Event: "cross-referenced", Actor: actor, CreatedAt: ts},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := NormalizeTimelineEvent(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", ev.Kind, tt.wantKind)
			}
			if ev.Actor != "alice" {
				t.Errorf("Actor = %q, want alice", ev.Actor)
			}
			if !ev.Date.Equal(ts) {
				t.Errorf("Date = %v, want %v", ev.Date, ts)
			}
		})
	}
}

func TestNormalizeTimelineEventNilActor(t *testing.T) {
	ev, ok := NormalizeTimelineEvent(github.RawTimelineEvent{Event: "closed"})
	if !ok {
		t.Fatal("expected event to normalize")
	}
	if ev.Actor != "" {
		t.Errorf("Actor = %q, want empty", ev.Actor)
	}
}

func TestIsMetadata(t *testing.T) {
	metadata := []Kind{KindLabeled, KindUnlabeled, KindMilestoned, KindDemilestoned, KindAssigned, KindUnassigned}
	for _, kind := range metadata {
		if !(Event{Kind: kind}).IsMetadata() {
			t.Errorf("%s should be metadata", kind)
		}
	}

	other := []Kind{KindCreated, KindCommented, KindClosed, KindReopened}
	for _, kind := range other {
		if (Event{Kind: kind}).IsMetadata() {
			t.Errorf("%s should not be metadata", kind)
		}
	}
}
