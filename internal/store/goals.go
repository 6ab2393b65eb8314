package store

import (
	"sort"

	"github.com/google/uuid"

	"github.com/calculate1024/goal-tracker/internal/goal"
)

// Update describes a partial goal edit; nil fields are left untouched.
// Replacing Subtasks wholesale recomputes progress and status.
type Update struct {
	Title    *string
	Category *string
	Deadline *string
	Subtasks *[]goal.Subtask
}

// Stats summarizes the current goal set.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	OnTrack   int `json:"onTrack"`
	Overdue   int `json:"overdue"`
}

// AddGoal creates a goal from in, persists and notifies.
func (s *Store) AddGoal(in goal.Input) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := goal.New(in, s.now())
	if in.Category == "" || !s.state.HasCategory(in.Category) {
		if len(s.state.Categories) > 0 {
			g.Category = s.state.Categories[0]
		}
	}

	s.state.Goals = append(s.state.Goals, g)
	if err := s.commitLocked(); err != nil {
		// roll back the in-memory append so state matches disk
		s.state.Goals = s.state.Goals[:len(s.state.Goals)-1]
		return goal.Goal{}, err
	}
	return g, nil
}

// UpdateGoal applies the provided fields to the goal with the given id.
// Unknown ids are a silent no-op signalled by found=false.
func (s *Store) UpdateGoal(id string, upd Update) (goal.Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return goal.Goal{}, false, nil
	}

	g := &s.state.Goals[idx]
	if upd.Title != nil {
		g.Title = *upd.Title
	}
	if upd.Category != nil && s.state.HasCategory(*upd.Category) {
		g.Category = *upd.Category
	}
	if upd.Deadline != nil {
		g.Deadline = *upd.Deadline
	}
	if upd.Subtasks != nil {
		replaced := make([]goal.Subtask, 0, len(*upd.Subtasks))
		for _, st := range *upd.Subtasks {
			if st.ID == "" {
				st.ID = uuid.NewString()
			}
			replaced = append(replaced, st)
		}
		g.Subtasks = replaced
		g.Recompute()
	}

	if err := s.commitLocked(); err != nil {
		return goal.Goal{}, true, err
	}
	return *g, true, nil
}

// DeleteGoal removes the goal with the given id. Absent ids are a no-op.
func (s *Store) DeleteGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	s.state.Goals = append(s.state.Goals[:idx], s.state.Goals[idx+1:]...)
	return s.commitLocked()
}

// ToggleGoalStatus flips a goal between active and completed.
func (s *Store) ToggleGoalStatus(id string) (goal.Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return goal.Goal{}, false, nil
	}

	g := &s.state.Goals[idx]
	if g.Status == goal.StatusCompleted {
		g.Status = goal.StatusActive
	} else {
		g.Status = goal.StatusCompleted
	}

	if err := s.commitLocked(); err != nil {
		return goal.Goal{}, true, err
	}
	return *g, true, nil
}

// ToggleSubtask flips one subtask and recomputes the parent's progress
// and status.
func (s *Store) ToggleSubtask(goalID, subtaskID string) (goal.Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(goalID)
	if idx < 0 {
		return goal.Goal{}, false, nil
	}

	g := &s.state.Goals[idx]
	found := false
	for i := range g.Subtasks {
		if g.Subtasks[i].ID == subtaskID {
			g.Subtasks[i].Completed = !g.Subtasks[i].Completed
			found = true
			break
		}
	}
	if !found {
		return goal.Goal{}, false, nil
	}
	g.Recompute()

	if err := s.commitLocked(); err != nil {
		return goal.Goal{}, true, err
	}
	return *g, true, nil
}

// Goals returns a copy of all goals in insertion order.
func (s *Store) Goals() []goal.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]goal.Goal(nil), s.state.Goals...)
}

// FilteredGoals applies the stored category and status filters and sort,
// each overridable per call (empty string = use stored value).
// Ties under equal sort keys are left in whatever order the stable sort
// preserves.
func (s *Store) FilteredGoals(filterOverride, sortOverride string) []goal.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter := s.state.CurrentFilter
	if filterOverride != "" {
		filter = filterOverride
	}
	sortBy := s.state.SortBy
	if sortOverride != "" {
		sortBy = sortOverride
	}

	var result []goal.Goal
	for _, g := range s.state.Goals {
		if s.state.FilterCategory != "" && g.Category != s.state.FilterCategory {
			continue
		}
		if filter != goal.FilterAll && filter != "" && g.Status != filter {
			continue
		}
		result = append(result, g)
	}

	switch sortBy {
	case goal.SortByCreated:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt > result[j].CreatedAt
		})
	case goal.SortByProgress:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Progress > result[j].Progress
		})
	default: // deadline ascending, missing deadlines last
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].SortDeadline() < result[j].SortDeadline()
		})
	}

	return result
}

// SetFilters updates the stored filter and sort preferences.
func (s *Store) SetFilters(currentFilter, filterCategory, sortBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if currentFilter != "" {
		s.state.CurrentFilter = currentFilter
	}
	s.state.FilterCategory = filterCategory
	if sortBy != "" {
		s.state.SortBy = sortBy
	}
	return s.commitLocked()
}

// Stats computes the goal counters. Overdue means active with a deadline
// strictly before today.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st := Stats{}
	for i := range s.state.Goals {
		g := &s.state.Goals[i]
		st.Total++
		if g.Status == goal.StatusCompleted {
			st.Completed++
			continue
		}
		if g.IsOverdue(now) {
			st.Overdue++
		} else {
			st.OnTrack++
		}
	}
	return st
}

// ProcessedEmailIDs returns the set of source email ids across current
// goals. Deleted goals drop out of this set, making their emails eligible
// for reprocessing.
func (s *Store) ProcessedEmailIDs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]bool)
	for _, g := range s.state.Goals {
		if g.SourceEmailID != "" {
			ids[g.SourceEmailID] = true
		}
	}
	return ids
}

// indexLocked returns the position of the goal with the given id, or -1.
func (s *Store) indexLocked(id string) int {
	for i := range s.state.Goals {
		if s.state.Goals[i].ID == id {
			return i
		}
	}
	return -1
}
