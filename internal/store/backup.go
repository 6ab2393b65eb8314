package store

import (
	"encoding/json"
	"fmt"

	"github.com/calculate1024/goal-tracker/internal/goal"
)

// Import modes.
const (
	ImportOverwrite = "overwrite"
	ImportMerge     = "merge"
)

// ImportResult is the structured outcome of an import. Import failures are
// reported here, never raised.
type ImportResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// ExportData returns a full serialized snapshot of the application state,
// suitable for backup and re-import.
func (s *Store) ExportData() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.state, "", "  ")
}

// ImportState validates payload and applies it in the given mode.
// Overwrite replaces all state; merge appends only goals whose id is not
// already present. Legacy records are migrated before acceptance.
func (s *Store) ImportState(payload []byte, mode string) ImportResult {
	incoming := &goal.AppState{}
	if err := json.Unmarshal(payload, incoming); err != nil {
		return ImportResult{Message: fmt.Sprintf("invalid backup file: %v", err)}
	}
	if incoming.Goals == nil {
		return ImportResult{Message: "invalid backup file: missing goals array"}
	}
	for i, g := range incoming.Goals {
		if g.ID == "" || g.Title == "" {
			return ImportResult{Message: fmt.Sprintf("invalid backup file: goal %d is missing id or title", i)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	incoming.Migrate(s.now())

	switch mode {
	case ImportOverwrite:
		prev := s.state
		s.state = incoming
		if err := s.commitLocked(); err != nil {
			s.state = prev
			return ImportResult{Message: fmt.Sprintf("import failed: %v", err)}
		}
		return ImportResult{OK: true, Imported: len(incoming.Goals), Message: fmt.Sprintf("replaced state with %d goals", len(incoming.Goals))}

	case ImportMerge:
		existing := make(map[string]bool, len(s.state.Goals))
		for _, g := range s.state.Goals {
			existing[g.ID] = true
		}

		imported, skipped := 0, 0
		appended := 0
		for _, g := range incoming.Goals {
			if existing[g.ID] {
				skipped++
				continue
			}
			s.state.Goals = append(s.state.Goals, g)
			appended++
			imported++
		}
		for _, c := range incoming.Categories {
			if !s.state.HasCategory(c) {
				s.state.Categories = append(s.state.Categories, c)
			}
		}

		if err := s.commitLocked(); err != nil {
			s.state.Goals = s.state.Goals[:len(s.state.Goals)-appended]
			return ImportResult{Message: fmt.Sprintf("import failed: %v", err)}
		}
		return ImportResult{OK: true, Imported: imported, Skipped: skipped,
			Message: fmt.Sprintf("merged %d goals, skipped %d duplicates", imported, skipped)}

	default:
		return ImportResult{Message: fmt.Sprintf("unknown import mode %q", mode)}
	}
}
