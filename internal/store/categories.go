package store

import "fmt"

// AddCategory appends name to the category set if not already present.
// Returns whether the set changed.
func (s *Store) AddCategory(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" || s.state.HasCategory(name) {
		return false, nil
	}
	s.state.Categories = append(s.state.Categories, name)
	if err := s.commitLocked(); err != nil {
		s.state.Categories = s.state.Categories[:len(s.state.Categories)-1]
		return false, err
	}
	return true, nil
}

// RemoveCategory removes name from the set, re-pointing any goals that
// reference it to reassignTo first. Removing the last remaining category
// is refused.
func (s *Store) RemoveCategory(name, reassignTo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasCategory(name) {
		return nil
	}
	if len(s.state.Categories) == 1 {
		return fmt.Errorf("cannot remove the last category %q", name)
	}
	affected := 0
	for i := range s.state.Goals {
		if s.state.Goals[i].Category == name {
			affected++
		}
	}
	if affected > 0 {
		if reassignTo == "" || reassignTo == name || !s.state.HasCategory(reassignTo) {
			return fmt.Errorf("invalid reassignment category %q for %d affected goals", reassignTo, affected)
		}
		for i := range s.state.Goals {
			if s.state.Goals[i].Category == name {
				s.state.Goals[i].Category = reassignTo
			}
		}
	}

	kept := s.state.Categories[:0]
	for _, c := range s.state.Categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	s.state.Categories = kept

	return s.commitLocked()
}

// Categories returns a copy of the category set in order.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.Categories...)
}
