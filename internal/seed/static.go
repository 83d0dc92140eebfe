// ABOUTME: Static fallback values when the OpenAI API key is not available.
// ABOUTME: Picks deterministic values from field names, types and options.

package seed

import (
	"fmt"
	"strings"

	"github.com/2389/panel/internal/definition"
)

var (
	staticNames = []string{"Alice Chen", "Bob Martinez", "Sarah Johnson", "Dave Wilson", "Jenna Taylor", "Mike Brown", "Alex Rivera", "Emma Davis", "Chris Lee", "Jane Kim"}
	staticTitles = []string{
		"Q4 planning notes", "Release checklist", "Partnership proposal", "Weekly digest",
		"Offsite agenda", "Onboarding guide", "Incident review", "Roadmap update",
		"Customer feedback summary", "Hiring plan",
	}
	staticSentences = []string{
		"Draft prepared for review by the team before Friday.",
		"Numbers are preliminary and will change after the budget meeting.",
		"Follow up with legal once the comments are in.",
		"Shared with the whole department for feedback.",
		"Archived copy kept for reference.",
	}
)

func generateStatic(m definition.Model, count int) []map[string]any {
	rows := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		row := make(map[string]any, len(m.Fields))
		for _, f := range m.Fields {
			row[f.Name] = staticValue(f, i)
		}
		rows = append(rows, row)
	}
	return rows
}

// staticValue picks the i-th deterministic value for a field
func staticValue(f definition.Field, i int) any {
	if len(f.Options) > 0 {
		return f.Options[i%len(f.Options)]
	}

	name := strings.ToLower(f.Name)
	switch {
	case fieldType(f) == "email" || strings.Contains(name, "email"):
		person := strings.ToLower(strings.ReplaceAll(pick(staticNames, i), " ", "."))
		return fmt.Sprintf("%s@example.com", person)
	case fieldType(f) == "number":
		return (i + 1) * 10
	case fieldType(f) == "switch" || fieldType(f) == "bool":
		return i%2 == 0
	case strings.Contains(name, "name") || strings.Contains(name, "author"):
		return pick(staticNames, i)
	case fieldType(f) == "textarea" || strings.Contains(name, "body") || strings.Contains(name, "description"):
		return pick(staticSentences, i)
	default:
		return pick(staticTitles, i)
	}
}

func fieldType(f definition.Field) string {
	if f.Type == "" {
		return "text"
	}
	return strings.ToLower(f.Type)
}

func pick(list []string, i int) string {
	return list[i%len(list)]
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
