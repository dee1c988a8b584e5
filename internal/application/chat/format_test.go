package chat

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fub-assistant/backend/internal/infrastructure/fub"
	"github.com/stretchr/testify/assert"
)

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "keeps clean bullets",
			raw:  "- Call the lead today\n- Mention the open house",
			want: "- Call the lead today\n- Mention the open house",
		},
		{
			name: "caps at three lines",
			raw:  "- one\n- two\n- three\n- four\n- five",
			want: "- one\n- two\n- three",
		},
		{
			name: "normalizes mixed markers",
			raw:  "* First idea\n• Second idea\n1. Third idea",
			want: "- First idea\n- Second idea\n- Third idea",
		},
		{
			name: "wraps plain prose into a bullet",
			raw:  "Reach out with a market update.",
			want: "- Reach out with a market update.",
		},
		{
			name: "drops blank lines",
			raw:  "- one\n\n\n- two",
			want: "- one\n- two",
		},
		{
			name: "empty input",
			raw:  "   \n  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAnswer(tt.raw))
		})
	}
}

func TestFormatAnswer_TruncatesLongAnswers(t *testing.T) {
	raw := "- " + strings.Repeat("a", 500)

	got := FormatAnswer(raw)

	assert.Equal(t, 400, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestFormatAnswer_TruncatesOnRuneBoundary(t *testing.T) {
	// Multi-byte content straddling the cap must not be cut mid-rune
	raw := "- " + strings.Repeat("a", 394) + "日本語テスト"

	got := FormatAnswer(raw)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 400, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSummarizeLead(t *testing.T) {
	person := &fub.Person{
		ID:     123,
		Name:   "Jamie Rivera",
		Stage:  "Lead",
		Source: "Zillow",
		Emails: []fub.Email{{Value: "jamie@example.com"}},
	}
	activities := []fub.Activity{
		{Type: "email", Created: "2026-08-01T10:00:00Z"},
		{Type: "call", Created: "2026-07-28T16:30:00Z"},
	}

	summary := SummarizeLead(person, activities)

	assert.Contains(t, summary, "Name: Jamie Rivera")
	assert.Contains(t, summary, "Email: jamie@example.com")
	assert.Contains(t, summary, "Source: Zillow")
	assert.Contains(t, summary, "Recent activity: 1 calls (latest: 2026-07-28T16:30:00Z); 1 emails (latest: 2026-08-01T10:00:00Z)")
	// Empty fields are omitted
	assert.NotContains(t, summary, "Phone:")
}

func TestSummarizeLead_NilPerson(t *testing.T) {
	assert.Equal(t, "", SummarizeLead(nil, nil))
}

func TestSummarizeActivities_GroupsByKind(t *testing.T) {
	activities := []fub.Activity{
		{Type: "Outbound Call", Created: "2026-07-20T09:00:00Z"},
		{Type: "SMS", Created: "2026-07-21T09:00:00Z"},
		{Type: "call", Created: "2026-07-25T12:00:00Z"},
		{Type: "Email Received", Created: "2026-07-26T08:00:00Z"},
		{Type: "note", Created: "2026-07-27T11:00:00Z"},
	}

	got := summarizeActivities(activities)

	assert.Equal(t, "2 calls (latest: 2026-07-25T12:00:00Z); 1 texts (latest: 2026-07-21T09:00:00Z); 1 emails (latest: 2026-07-26T08:00:00Z); 1 notes (latest: 2026-07-27T11:00:00Z)", got)
}

func TestSummarizeActivities_OnlyLastFiveCount(t *testing.T) {
	activities := make([]fub.Activity, 0, 8)
	for i := 0; i < 8; i++ {
		activities = append(activities, fub.Activity{Type: "call", Created: fmt.Sprintf("2026-07-%02dT00:00:00Z", i+1)})
	}

	got := summarizeActivities(activities)

	assert.Equal(t, "5 calls (latest: 2026-07-08T00:00:00Z)", got)
}

func TestSummarizeActivities_Empty(t *testing.T) {
	assert.Equal(t, "No recent activities found.", summarizeActivities(nil))
	assert.Equal(t, "No recent activities found.", summarizeActivities([]fub.Activity{{Type: "task", Created: "2026-08-01T00:00:00Z"}}))
}
