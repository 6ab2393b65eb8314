package goal

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for deadlines and creation dates.
const DateLayout = "2006-01-02"

// Status values for a goal. Status is derived from subtask progress and is
// never set directly by callers outside this package and the store.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Sort modes accepted by the store's filtered listing.
const (
	SortByDeadline = "deadline"
	SortByCreated  = "created"
	SortByProgress = "progress"
)

// Status filter values.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
)

// deadlineSentinel sorts goals without a deadline after every dated goal.
const deadlineSentinel = "9999-12-31"

// Subtask is an atomic, checkable step belonging to one goal.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Goal is a user-defined objective with optional deadline and subtasks.
// Progress and Status are derived fields; mutate subtasks and call Recompute.
type Goal struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Deadline      string    `json:"deadline,omitempty"` // YYYY-MM-DD, empty = none
	Status        string    `json:"status"`
	CreatedAt     string    `json:"createdAt"` // YYYY-MM-DD
	Progress      int       `json:"progress"`
	Subtasks      []Subtask `json:"subtasks"`
	SourceEmailID string    `json:"sourceEmailId,omitempty"`
	SourceLink    string    `json:"sourceLink,omitempty"`
}

// Input describes a goal to be created.
type Input struct {
	Title         string
	Category      string
	Deadline      string
	Subtasks      []string
	SourceEmailID string
	SourceLink    string
}

// New builds a Goal from an Input: fresh ids, zero progress, active status,
// created today.
func New(in Input, now time.Time) Goal {
	subtasks := make([]Subtask, 0, len(in.Subtasks))
	for _, text := range in.Subtasks {
		subtasks = append(subtasks, Subtask{
			ID:   uuid.NewString(),
			Text: text,
		})
	}

	return Goal{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Category:      in.Category,
		Deadline:      in.Deadline,
		Status:        StatusActive,
		CreatedAt:     now.Format(DateLayout),
		Progress:      0,
		Subtasks:      subtasks,
		SourceEmailID: in.SourceEmailID,
		SourceLink:    in.SourceLink,
	}
}

// ComputeProgress returns the rounded percentage of completed subtasks,
// or 0 when there are none.
func ComputeProgress(subtasks []Subtask) int {
	if len(subtasks) == 0 {
		return 0
	}
	completed := 0
	for _, st := range subtasks {
		if st.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(subtasks))))
}

// Recompute refreshes the derived Progress and Status fields.
// A goal completes automatically at 100% with at least one subtask and
// reverts to active if progress drops below 100 afterwards. Goals without
// subtasks keep whatever status was toggled manually.
func (g *Goal) Recompute() {
	g.Progress = ComputeProgress(g.Subtasks)

	if len(g.Subtasks) == 0 {
		return
	}
	if g.Progress == 100 {
		g.Status = StatusCompleted
	} else if g.Status == StatusCompleted {
		g.Status = StatusActive
	}
}

// IsOverdue reports whether the goal has a deadline strictly before today.
func (g *Goal) IsOverdue(now time.Time) bool {
	if g.Deadline == "" {
		return false
	}
	deadline, err := time.Parse(DateLayout, g.Deadline)
	if err != nil {
		return false
	}
	today, _ := time.Parse(DateLayout, now.Format(DateLayout))
	return deadline.Before(today)
}

// SortDeadline returns the deadline used for ordering; goals without one
// sort last via a far-future sentinel.
func (g *Goal) SortDeadline() string {
	if g.Deadline == "" {
		return deadlineSentinel
	}
	return g.Deadline
}

// IsValidDate reports whether s is a strict YYYY-MM-DD calendar date.
func IsValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
