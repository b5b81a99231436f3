// Package httpapi exposes the task lifecycle over HTTP using gin.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hfujita/taskpilot/internal/usecase"
)

// UseCases groups the application operations the server dispatches to.
type UseCases struct {
	CreateTask       *usecase.CreateTask
	GetTask          *usecase.GetTask
	ListTasks        *usecase.ListTasks
	UpdateTask       *usecase.UpdateTask
	DeleteTask       *usecase.DeleteTask
	GenerateSubtasks *usecase.GenerateSubtasks
}

// Server serves the task API.
type Server struct {
	engine *gin.Engine
	logger *slog.Logger
}

// NewServer builds the router with all routes registered.
func NewServer(uc UseCases, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{engine: engine, logger: logger}

	engine.GET("/healthz", s.health)

	tasks := engine.Group("/tasks")
	{
		tasks.POST("", s.createTask(uc.CreateTask))
		tasks.GET("", s.listTasks(uc.ListTasks))
		tasks.GET("/:id", s.getTask(uc.GetTask))
		tasks.PATCH("/:id", s.updateTask(uc.UpdateTask))
		tasks.DELETE("/:id", s.deleteTask(uc.DeleteTask))
		tasks.POST("/:id/subtasks", s.generateSubtasks(uc.GenerateSubtasks))
	}

	return s
}

// Handler returns the underlying http.Handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server on the given address and blocks.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger tags each request with an ID and logs method, path,
// status and latency at completion.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		c.Next()

		if logger != nil {
			logger.Info("request",
				"id", requestID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", c.Writer.Status(),
				"duration", time.Since(start),
			)
		}
	}
}
