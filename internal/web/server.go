// Package web is the thin view layer over the core's data contracts. It
// exposes the store and workflow as a local JSON API and holds no logic of
// its own.
package web

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/calculate1024/goal-tracker/internal/goal"
	"github.com/calculate1024/goal-tracker/internal/store"
	"github.com/calculate1024/goal-tracker/internal/workflow"
)

// GoalStore is the store surface the handlers consume.
type GoalStore interface {
	FilteredGoals(filterOverride, sortOverride string) []goal.Goal
	AddGoal(in goal.Input) (goal.Goal, error)
	DeleteGoal(id string) error
	ToggleGoalStatus(id string) (goal.Goal, bool, error)
	ToggleSubtask(goalID, subtaskID string) (goal.Goal, bool, error)
	Stats() store.Stats
	Categories() []string
	AddCategory(name string) (bool, error)
	ExportData() ([]byte, error)
	ImportState(payload []byte, mode string) store.ImportResult
}

// Runner triggers one analysis workflow run.
type Runner interface {
	Run(ctx context.Context) *workflow.RunResult
}

// Server is the local goal-tracker web server.
type Server struct {
	store  GoalStore
	runner Runner
	router *gin.Engine
}

// NewServer wires the routes.
func NewServer(st GoalStore, runner Runner) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	s := &Server{store: st, runner: runner, router: router}

	api := router.Group("/api")
	{
		api.GET("/goals", s.handleListGoals)
		api.POST("/goals", s.handleCreateGoal)
		api.DELETE("/goals/:id", s.handleDeleteGoal)
		api.POST("/goals/:id/toggle", s.handleToggleGoal)
		api.POST("/goals/:id/subtasks/:sid/toggle", s.handleToggleSubtask)
		api.GET("/stats", s.handleStats)
		api.GET("/categories", s.handleCategories)
		api.POST("/categories", s.handleAddCategory)
		api.GET("/export", s.handleExport)
		api.POST("/import", s.handleImport)
		api.POST("/run", s.handleRun)
	}

	return s
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
