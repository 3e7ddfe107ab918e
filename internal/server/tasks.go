package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"activity-planner/internal/service"
)

const dateLayout = "2006-01-02"

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	StartTime   *time.Time `json:"start_time"`
	Deadline    *time.Time `json:"deadline"`
}

func (r taskRequest) input() service.TaskInput {
	in := service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
	}
	if r.StartTime != nil {
		in.StartTime = *r.StartTime
	}
	if r.Deadline != nil {
		in.Deadline = *r.Deadline
	}
	return in
}

// handleListTasks refreshes priorities the way opening the list does,
// then returns every task.
func (s *Server) handleListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	_, changed, err := s.priorities.RunPeriodicCheck(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "priorities_changed": changed})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	task, err := s.tasks.CreateTask(c.Request.Context(), req.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	task, err := s.tasks.UpdateTask(c.Request.Context(), id, req.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleBulkDelete(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	removed, err := s.tasks.DeleteTasks(c.Request.Context(), req.IDs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

func (s *Server) handleSetCompleted(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Completed *bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Completed == nil {
		s.respondError(c, fmt.Errorf("%w: completed is required", service.ErrInvalidInput))
		return
	}
	task, err := s.tasks.SetCompleted(c.Request.Context(), id, *req.Completed)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleTasksBetween(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: start must be RFC3339", service.ErrInvalidInput))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: end must be RFC3339", service.ErrInvalidInput))
		return
	}
	tasks, err := s.tasks.TasksBetween(c.Request.Context(), start, end)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleCalendar(c *gin.Context) {
	day, err := time.ParseInLocation(dateLayout, c.Query("date"), s.tasks.Location())
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: date must be YYYY-MM-DD", service.ErrInvalidInput))
		return
	}
	tasks, err := s.tasks.TasksOnDate(c.Request.Context(), day)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format(dateLayout), "tasks": tasks})
}

func (s *Server) handleRefreshPriorities(c *gin.Context) {
	checked, changed, err := s.priorities.RunPeriodicCheck(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked": checked, "changed": changed})
}
