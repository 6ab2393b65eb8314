package main

import (
	"strings"

	"github.com/calculate1024/goal-tracker/internal/goal"
	"github.com/calculate1024/goal-tracker/internal/store"
)

// shortID abbreviates an id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func hasPrefix(id, prefix string) bool {
	return prefix != "" && strings.HasPrefix(id, prefix)
}

// resolvePrefix finds the goal whose id matches or starts with prefix.
// Ambiguous prefixes resolve to the first match in insertion order.
func resolvePrefix(st *store.Store, prefix string) (string, bool) {
	for _, g := range st.Goals() {
		if g.ID == prefix || hasPrefix(g.ID, prefix) {
			return g.ID, true
		}
	}
	return "", false
}

func toggleByPrefix(st *store.Store, prefix string) (goal.Goal, bool, error) {
	id, ok := resolvePrefix(st, prefix)
	if !ok {
		return goal.Goal{}, false, nil
	}
	return st.ToggleGoalStatus(id)
}
