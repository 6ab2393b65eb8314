package extract

import (
	"strings"

	"github.com/calculate1024/goal-tracker/internal/goal"
)

// Bounds applied to model output. The model is untrusted: everything it
// returns is clamped into these limits before it can reach the store.
const (
	MaxGoals      = 10
	MaxTitleLen   = 200
	MaxSubtasks   = 7
	MaxSubtaskLen = 150
)

// ValidateResult sanitizes a parsed response in place. categories is the
// caller-supplied whitelist; an out-of-whitelist category falls back to the
// first entry. Deadlines survive only as strict YYYY-MM-DD calendar dates.
func ValidateResult(r *Result, categories []string) {
	if len(r.Goals) > MaxGoals {
		r.Goals = r.Goals[:MaxGoals]
	}
	for i := range r.Goals {
		validateGoal(&r.Goals[i], categories)
	}
	if !isValidPriority(r.Summary.TopPriority) {
		r.Summary.TopPriority = ""
	}
}

func validateGoal(g *Goal, categories []string) {
	g.Title = truncate(strings.TrimSpace(g.Title), MaxTitleLen)

	if !contains(categories, g.Category) {
		if len(categories) > 0 {
			g.Category = categories[0]
		} else {
			g.Category = ""
		}
	}

	if !isValidPriority(g.Priority) {
		g.Priority = PriorityMedium
	}

	if len(g.Subtasks) > MaxSubtasks {
		g.Subtasks = g.Subtasks[:MaxSubtasks]
	}
	for i, st := range g.Subtasks {
		g.Subtasks[i] = truncate(strings.TrimSpace(st), MaxSubtaskLen)
	}

	if !goal.IsValidDate(g.Deadline) {
		g.Deadline = ""
	}
}

func isValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
