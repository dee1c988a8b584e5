package chat

import (
	"fmt"
	"strings"

	"github.com/fub-assistant/backend/internal/infrastructure/fub"
)

// SummarizeLead renders a compact plain-text context block for the model
// from the lead record and its recent timeline.
func SummarizeLead(person *fub.Person, activities []fub.Activity) string {
	if person == nil {
		return ""
	}

	var b strings.Builder
	writeField(&b, "Name", person.Name)
	writeField(&b, "Email", person.PrimaryEmail())
	writeField(&b, "Phone", person.PrimaryPhone())
	writeField(&b, "Source", person.Source)
	writeField(&b, "Stage", person.Stage)
	writeField(&b, "Created", person.Created)

	fmt.Fprintf(&b, "Recent activity: %s\n", summarizeActivities(activities))

	return strings.TrimRight(b.String(), "\n")
}

// activityKinds fixes the render order of the grouped timeline buckets.
var activityKinds = []string{"calls", "texts", "emails", "notes"}

// summarizeActivities collapses the last five timeline entries into grouped
// counts per kind with the latest timestamp of each, e.g.
// "2 calls (latest: 2026-08-01T10:00:00Z); 1 emails (latest: ...)".
func summarizeActivities(activities []fub.Activity) string {
	if len(activities) > 5 {
		activities = activities[len(activities)-5:]
	}

	latest := make(map[string]string, len(activityKinds))
	counts := make(map[string]int, len(activityKinds))
	for _, a := range activities {
		kind := classifyActivity(a.Type)
		if kind == "" {
			continue
		}
		counts[kind]++
		latest[kind] = a.Created
	}

	parts := make([]string, 0, len(activityKinds))
	for _, kind := range activityKinds {
		if counts[kind] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s (latest: %s)", counts[kind], kind, latest[kind]))
	}
	if len(parts) == 0 {
		return "No recent activities found."
	}
	return strings.Join(parts, "; ")
}

func classifyActivity(activityType string) string {
	t := strings.ToLower(activityType)
	switch {
	case strings.Contains(t, "call"):
		return "calls"
	case strings.Contains(t, "text"), strings.Contains(t, "sms"):
		return "texts"
	case strings.Contains(t, "email"):
		return "emails"
	case strings.Contains(t, "note"):
		return "notes"
	default:
		return ""
	}
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
