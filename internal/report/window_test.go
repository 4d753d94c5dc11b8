package report

import (
	"testing"
	"time"

	"github.com/andywolf/chronicle/internal/github"
)

func issueFixture(num int, snap *github.IssueSnapshot) github.Issue {
	snap.Number = num
	return github.Issue{
		Ref:      github.IssueRef{Owner: "octo", Repo: "widgets", Number: num},
		Snapshot: snap,
	}
}

func TestSelectActive(t *testing.T) {
	start := day(27, 0)
	end := day(28, 0)
	closed := day(27, 14)

	issues := []github.Issue{
		issueFixture(1, &github.IssueSnapshot{
			User:      github.User{Login: "alice"},
			CreatedAt: day(27, 9), // created in window
		}),
		issueFixture(2, &github.IssueSnapshot{
			User:      github.User{Login: "bob"},
			CreatedAt: day(20, 9),
			Comments: []github.Comment{
				{ID: 1, User: github.User{Login: "carol"}, CreatedAt: day(27, 10)},
			},
		}),
		issueFixture(3, &github.IssueSnapshot{
			User:      github.User{Login: "dave"},
			CreatedAt: day(20, 9),
			ClosedAt:  &closed,
		}),
		issueFixture(4, &github.IssueSnapshot{
			User:      github.User{Login: "erin"},
			CreatedAt: day(20, 9),
			TimelineEvents: []github.RawTimelineEvent{
				{Event: "labeled", Actor: &github.User{Login: "erin"}, CreatedAt: day(27, 11), Label: &github.Label{Name: "bug"}},
			},
		}),
		issueFixture(5, &github.IssueSnapshot{
			User:      github.User{Login: "frank"},
			CreatedAt: day(20, 9), // nothing in window
			Comments: []github.Comment{
				{ID: 2, User: github.User{Login: "frank"}, CreatedAt: day(21, 9)},
			},
		}),
	}

	active, stats := SelectActive(issues, start, end)

	if len(active) != 4 {
		t.Fatalf("got %d active issues, want 4", len(active))
	}
	for i, want := range []int{1, 2, 3, 4} {
		if active[i].Ref.Number != want {
			t.Errorf("active[%d] = #%d, want #%d", i, active[i].Ref.Number, want)
		}
	}

	if stats.IssueCount() != 4 {
		t.Errorf("IssueCount = %d, want 4", stats.IssueCount())
	}
	// alice (author, created in window) and carol (commenter); the other
	// authors did not act inside the window.
	if stats.UserCount() != 2 {
		t.Errorf("UserCount = %d, want 2", stats.UserCount())
	}
}

func TestSelectActiveAuthorCountedOnlyWhenCreatedInWindow(t *testing.T) {
	issues := []github.Issue{
		issueFixture(1, &github.IssueSnapshot{
			User:      github.User{Login: "alice"},
			CreatedAt: day(20, 9),
			Comments: []github.Comment{
				{ID: 1, User: github.User{Login: "bob"}, CreatedAt: day(27, 10)},
			},
		}),
	}

	_, stats := SelectActive(issues, day(27, 0), day(28, 0))

	if stats.UserCount() != 1 {
		t.Errorf("UserCount = %d, want 1 (only the in-window commenter)", stats.UserCount())
	}
}

func TestSelectActiveDistinctUsersDeduplicated(t *testing.T) {
	issues := []github.Issue{
		issueFixture(1, &github.IssueSnapshot{
			User:      github.User{Login: "alice"},
			CreatedAt: day(20, 9),
			Comments: []github.Comment{
				{ID: 1, User: github.User{Login: "bob"}, CreatedAt: day(27, 9)},
				{ID: 2, User: github.User{Login: "bob"}, CreatedAt: day(27, 10)},
			},
		}),
		issueFixture(2, &github.IssueSnapshot{
			User:      github.User{Login: "carol"},
			CreatedAt: day(20, 9),
			Comments: []github.Comment{
				{ID: 3, User: github.User{Login: "bob"}, CreatedAt: day(27, 11)},
			},
		}),
	}

	_, stats := SelectActive(issues, day(27, 0), day(28, 0))

	if stats.UserCount() != 1 {
		t.Errorf("UserCount = %d, want 1", stats.UserCount())
	}
	if stats.IssueCount() != 2 {
		t.Errorf("IssueCount = %d, want 2", stats.IssueCount())
	}
}

func TestInWindow(t *testing.T) {
	start := day(27, 0)
	end := day(28, 0)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"before start", day(26, 23), false},
		{"at start", start, true},
		{"inside", day(27, 12), true},
		{"at end", end, false},
		{"after end", day(28, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inWindow(tt.t, start, end); got != tt.want {
				t.Errorf("inWindow(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}
