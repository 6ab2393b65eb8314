package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/calculate1024/goal-tracker/internal/goal"
	"github.com/calculate1024/goal-tracker/internal/store"
	"github.com/calculate1024/goal-tracker/internal/workflow"
)

type mockStore struct {
	goals        []goal.Goal
	gotFilter    string
	gotSort      string
	added        *goal.Input
	addErr       error
	deletedID    string
	toggleFound  bool
	importResult store.ImportResult
	gotMode      string
}

func (m *mockStore) FilteredGoals(filterOverride, sortOverride string) []goal.Goal {
	m.gotFilter, m.gotSort = filterOverride, sortOverride
	return m.goals
}

func (m *mockStore) AddGoal(in goal.Input) (goal.Goal, error) {
	if m.addErr != nil {
		return goal.Goal{}, m.addErr
	}
	m.added = &in
	return goal.Goal{ID: "g1", Title: in.Title, Status: goal.StatusActive}, nil
}

func (m *mockStore) DeleteGoal(id string) error {
	m.deletedID = id
	return nil
}

func (m *mockStore) ToggleGoalStatus(id string) (goal.Goal, bool, error) {
	if !m.toggleFound {
		return goal.Goal{}, false, nil
	}
	return goal.Goal{ID: id, Status: goal.StatusCompleted}, true, nil
}

func (m *mockStore) ToggleSubtask(goalID, subtaskID string) (goal.Goal, bool, error) {
	if !m.toggleFound {
		return goal.Goal{}, false, nil
	}
	return goal.Goal{ID: goalID, Progress: 50}, true, nil
}

func (m *mockStore) Stats() store.Stats {
	return store.Stats{Total: 3, Completed: 1, OnTrack: 1, Overdue: 1}
}

func (m *mockStore) Categories() []string { return []string{"Work", "Personal"} }

func (m *mockStore) AddCategory(name string) (bool, error) { return true, nil }

func (m *mockStore) ExportData() ([]byte, error) {
	return []byte(`{"goals":[]}`), nil
}

func (m *mockStore) ImportState(payload []byte, mode string) store.ImportResult {
	m.gotMode = mode
	return m.importResult
}

type mockRunner struct {
	result *workflow.RunResult
}

func (m *mockRunner) Run(ctx context.Context) *workflow.RunResult { return m.result }

func serve(t *testing.T, st GoalStore, runner Runner, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	s := NewServer(st, runner)

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestListGoals(t *testing.T) {
	st := &mockStore{goals: []goal.Goal{{ID: "a"}, {ID: "b"}}}
	w := serve(t, st, &mockRunner{}, "GET", "/api/goals?filter=active&sort=deadline", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if st.gotFilter != "active" || st.gotSort != "deadline" {
		t.Errorf("query overrides not forwarded: %q %q", st.gotFilter, st.gotSort)
	}

	var resp struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d", resp.Count)
	}
}

func TestCreateGoal(t *testing.T) {
	st := &mockStore{}
	w := serve(t, st, &mockRunner{}, "POST", "/api/goals",
		`{"title":"Ship release","category":"Work","deadline":"2025-04-01","subtasks":["tag","announce"]}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if st.added == nil || st.added.Title != "Ship release" || len(st.added.Subtasks) != 2 {
		t.Errorf("input not forwarded: %+v", st.added)
	}
}

func TestCreateGoal_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"category":"Work"}`},
		{"bad deadline", `{"title":"x","deadline":"tomorrow"}`},
		{"not json", `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, &mockStore{}, &mockRunner{}, "POST", "/api/goals", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d", w.Code)
			}
		})
	}
}

func TestCreateGoal_StoreError(t *testing.T) {
	st := &mockStore{addErr: errors.New("disk full")}
	w := serve(t, st, &mockRunner{}, "POST", "/api/goals", `{"title":"x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}

func TestDeleteGoal(t *testing.T) {
	st := &mockStore{}
	w := serve(t, st, &mockRunner{}, "DELETE", "/api/goals/abc", "")

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if st.deletedID != "abc" {
		t.Errorf("deleted id = %q", st.deletedID)
	}
}

func TestToggleGoal(t *testing.T) {
	w := serve(t, &mockStore{toggleFound: true}, &mockRunner{}, "POST", "/api/goals/abc/toggle", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}

	w = serve(t, &mockStore{}, &mockRunner{}, "POST", "/api/goals/missing/toggle", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing goal status = %d", w.Code)
	}
}

func TestToggleSubtask(t *testing.T) {
	w := serve(t, &mockStore{toggleFound: true}, &mockRunner{}, "POST", "/api/goals/g/subtasks/s/toggle", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}

	w = serve(t, &mockStore{}, &mockRunner{}, "POST", "/api/goals/g/subtasks/missing/toggle", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing subtask status = %d", w.Code)
	}
}

func TestStats(t *testing.T) {
	w := serve(t, &mockStore{}, &mockRunner{}, "GET", "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var stats store.Stats
	json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Total != 3 || stats.Overdue != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestExport(t *testing.T) {
	w := serve(t, &mockStore{}, &mockRunner{}, "GET", "/api/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "goals-backup.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestImport(t *testing.T) {
	st := &mockStore{importResult: store.ImportResult{OK: true, Imported: 2}}
	w := serve(t, st, &mockRunner{}, "POST", "/api/import", `{"goals":[]}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if st.gotMode != store.ImportMerge {
		t.Errorf("default mode = %q, want merge", st.gotMode)
	}

	st = &mockStore{importResult: store.ImportResult{Message: "invalid backup"}}
	w = serve(t, st, &mockRunner{}, "POST", "/api/import?mode=overwrite", `bad`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("rejected import status = %d", w.Code)
	}
	if st.gotMode != store.ImportOverwrite {
		t.Errorf("mode = %q", st.gotMode)
	}
}

func TestRunEndpoint(t *testing.T) {
	ok := &mockRunner{result: &workflow.RunResult{OK: true, Created: 2, Message: "created 2 goal(s)"}}
	w := serve(t, &mockStore{}, ok, "POST", "/api/run", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}

	failed := &mockRunner{result: &workflow.RunResult{Message: "missing configuration: Anthropic API key"}}
	w = serve(t, &mockStore{}, failed, "POST", "/api/run", "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("failed run status = %d", w.Code)
	}
}
