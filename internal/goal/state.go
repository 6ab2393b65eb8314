package goal

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategories seeds a fresh state. Categories are user-extendable and
// order-preserving; at least one must always remain.
var DefaultCategories = []string{"Work", "Personal", "Health", "Learning"}

// AppState is the full persisted application state. It is written through
// as a whole on every mutation.
type AppState struct {
	Goals          []Goal   `json:"goals"`
	Categories     []string `json:"categories"`
	CurrentFilter  string   `json:"currentFilter"`
	FilterCategory string   `json:"filterCategory"`
	SortBy         string   `json:"sortBy"`
}

// NewState returns an empty state with default categories and filters.
func NewState() *AppState {
	return &AppState{
		Goals:          []Goal{},
		Categories:     append([]string(nil), DefaultCategories...),
		CurrentFilter:  FilterAll,
		FilterCategory: "",
		SortBy:         SortByDeadline,
	}
}

// Migrate fills defaults on records persisted by older versions. It is
// idempotent and applied to every state on load and to every imported goal
// before acceptance.
func (s *AppState) Migrate(now time.Time) {
	if len(s.Categories) == 0 {
		s.Categories = append([]string(nil), DefaultCategories...)
	}
	if s.CurrentFilter == "" {
		s.CurrentFilter = FilterAll
	}
	if s.SortBy == "" {
		s.SortBy = SortByDeadline
	}
	if s.Goals == nil {
		s.Goals = []Goal{}
	}
	for i := range s.Goals {
		MigrateGoal(&s.Goals[i], s.Categories, now)
	}
}

// MigrateGoal defaults the fields a legacy goal record may be missing.
func MigrateGoal(g *Goal, categories []string, now time.Time) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Subtasks == nil {
		g.Subtasks = []Subtask{}
	}
	for i := range g.Subtasks {
		if g.Subtasks[i].ID == "" {
			g.Subtasks[i].ID = uuid.NewString()
		}
	}
	if g.Category == "" && len(categories) > 0 {
		g.Category = categories[0]
	}
	if g.CreatedAt == "" {
		g.CreatedAt = now.Format(DateLayout)
	}
	if g.Status == "" {
		g.Status = StatusActive
	}
	g.Recompute()
}

// HasCategory reports whether name is in the category set.
func (s *AppState) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}
