package store

import (
	"testing"

	"github.com/calculate1024/goal-tracker/internal/goal"
)

func TestAddCategory(t *testing.T) {
	s := openTestStore(t)
	base := len(s.Categories())

	added, err := s.AddCategory("Travel")
	if err != nil || !added {
		t.Fatalf("added=%v err=%v", added, err)
	}
	added, err = s.AddCategory("Travel")
	if err != nil || added {
		t.Fatalf("duplicate add: added=%v err=%v", added, err)
	}
	if len(s.Categories()) != base+1 {
		t.Errorf("categories = %v", s.Categories())
	}
}

func TestRemoveCategory_ReassignsGoals(t *testing.T) {
	s := openTestStore(t)
	s.AddCategory("Travel")
	g, _ := s.AddGoal(goal.Input{Title: "trip", Category: "Travel"})

	if err := s.RemoveCategory("Travel", "Personal"); err != nil {
		t.Fatal(err)
	}

	for _, c := range s.Categories() {
		if c == "Travel" {
			t.Error("category still present")
		}
	}
	for _, got := range s.Goals() {
		if got.ID == g.ID && got.Category != "Personal" {
			t.Errorf("goal not re-pointed: %s", got.Category)
		}
	}
}

func TestRemoveCategory_RequiresReassignmentWhenReferenced(t *testing.T) {
	s := openTestStore(t)
	s.AddGoal(goal.Input{Title: "x", Category: "Work"})

	if err := s.RemoveCategory("Work", ""); err == nil {
		t.Error("removal without a reassignment target should fail")
	}
	if err := s.RemoveCategory("Work", "Work"); err == nil {
		t.Error("reassigning to the removed category should fail")
	}
}

func TestRemoveCategory_RefusesLast(t *testing.T) {
	s := openTestStore(t)

	cats := s.Categories()
	for _, c := range cats[1:] {
		if err := s.RemoveCategory(c, cats[0]); err != nil {
			t.Fatalf("remove %s: %v", c, err)
		}
	}

	if err := s.RemoveCategory(cats[0], ""); err == nil {
		t.Error("removing the last category must be refused")
	}
}

func TestRemoveCategory_AbsentIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.RemoveCategory("NeverExisted", ""); err != nil {
		t.Fatalf("absent category should be a no-op, got %v", err)
	}
}
