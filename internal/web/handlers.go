package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calculate1024/goal-tracker/internal/goal"
	"github.com/calculate1024/goal-tracker/internal/store"
)

const maxImportSize = 4 << 20 // 4MB

func (s *Server) handleListGoals(c *gin.Context) {
	goals := s.store.FilteredGoals(c.Query("filter"), c.Query("sort"))
	c.JSON(http.StatusOK, gin.H{"goals": goals, "count": len(goals)})
}

type createGoalRequest struct {
	Title    string   `json:"title" binding:"required"`
	Category string   `json:"category"`
	Deadline string   `json:"deadline"`
	Subtasks []string `json:"subtasks"`
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Deadline != "" && !goal.IsValidDate(req.Deadline) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be YYYY-MM-DD"})
		return
	}

	created, err := s.store.AddGoal(goal.Input{
		Title:    req.Title,
		Category: req.Category,
		Deadline: req.Deadline,
		Subtasks: req.Subtasks,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	if err := s.store.DeleteGoal(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleToggleGoal(c *gin.Context) {
	g, found, err := s.store.ToggleGoalStatus(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleToggleSubtask(c *gin.Context) {
	g, found, err := s.store.ToggleSubtask(c.Param("id"), c.Param("sid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal or subtask not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Stats())
}

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.store.Categories()})
}

func (s *Server) handleAddCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	added, err := s.store.AddCategory(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "categories": s.store.Categories()})
}

func (s *Server) handleExport(c *gin.Context) {
	data, err := s.store.ExportData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="goals-backup.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleImport(c *gin.Context) {
	mode := c.DefaultQuery("mode", store.ImportMerge)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.store.ImportState(payload, mode)
	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

func (s *Server) handleRun(c *gin.Context) {
	result := s.runner.Run(c.Request.Context())
	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}
