package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"activity-planner/internal/repository"
	"activity-planner/internal/service"
)

const userKey = "user"

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Server provides the planner's JSON API.
type Server struct {
	engine     *gin.Engine
	tasks      *service.TaskService
	priorities *service.PriorityService
	users      *service.UserService
	logger     *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(tasks *service.TaskService, priorities *service.PriorityService, users *service.UserService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:     router,
		tasks:      tasks,
		priorities: priorities,
		users:      users,
		logger:     logger,
	}
	router.Use(srv.requestLogger())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", s.handleSignup)
			auth.POST("/login", s.handleLogin)
			auth.POST("/logout", s.handleLogout)
		}

		private := api.Group("", s.requireSession)
		{
			tasks := private.Group("/tasks")
			{
				tasks.GET("", s.handleListTasks)
				tasks.POST("", s.handleCreateTask)
				tasks.GET("/range", s.handleTasksBetween)
				tasks.POST("/bulk-delete", s.handleBulkDelete)
				tasks.GET("/:id", s.handleGetTask)
				tasks.PUT("/:id", s.handleUpdateTask)
				tasks.DELETE("/:id", s.handleDeleteTask)
				tasks.PUT("/:id/completed", s.handleSetCompleted)
			}
			private.GET("/auth/me", s.handleMe)
			private.GET("/calendar", s.handleCalendar)
			private.POST("/priorities/refresh", s.handleRefreshPriorities)
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs API requests through slog.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
		)
	}
}

// requireSession rejects requests without a valid bearer token.
func (s *Server) requireSession(c *gin.Context) {
	user, err := s.users.Authenticate(c.Request.Context(), bearerToken(c))
	if err != nil {
		s.respondError(c, err)
		c.Abort()
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// parseID converts a path parameter to a task id.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps domain errors to status codes and logs server faults.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
