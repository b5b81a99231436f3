package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hfujita/taskpilot/internal/domain"
	"github.com/hfujita/taskpilot/internal/usecase"
)

type createRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	ParentID    *int64     `json:"parent_id"`
}

// updateRequest mirrors the PATCH body. Deadline is captured raw so an
// explicit null (clear the deadline) is distinguished from absence.
type updateRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Deadline    json.RawMessage `json:"deadline"`
	Completed   *bool           `json:"completed"`
	Priority    *string         `json:"priority"`
}

var jsonNull = []byte("null")

// patch converts the request body into a TaskPatch.
func (r updateRequest) patch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}

	if r.Priority != nil {
		priority, err := domain.ParsePriority(*r.Priority)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Priority = &priority
	}

	if r.Deadline != nil {
		patch.DeadlineSet = true
		if !bytes.Equal(bytes.TrimSpace(r.Deadline), jsonNull) {
			var deadline time.Time
			if err := json.Unmarshal(r.Deadline, &deadline); err != nil {
				return domain.TaskPatch{}, fmt.Errorf("%w: %v", domain.ErrInvalidDeadline, err)
			}
			patch.Deadline = &deadline
		}
	}

	return patch, nil
}

func (s *Server) createTask(uc *usecase.CreateTask) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		out, err := uc.Execute(c.Request.Context(), usecase.CreateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			Deadline:    req.Deadline,
			ParentID:    req.ParentID,
		})
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, out.Task)
	}
}

func (s *Server) getTask(uc *usecase.GetTask) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := taskID(c)
		if !ok {
			return
		}

		out, err := uc.Execute(c.Request.Context(), usecase.GetTaskInput{TaskID: id})
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, out.Task)
	}
}

func (s *Server) listTasks(uc *usecase.ListTasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := uc.Execute(c.Request.Context(), usecase.ListTasksInput{
			Status:          c.Query("status"),
			Priority:        c.Query("priority"),
			Tag:             c.Query("tag"),
			Ordering:        c.Query("ordering"),
			IncludeSubtasks: c.Query("include_subtasks") == "true",
		})
		if err != nil {
			s.respondError(c, err)
			return
		}

		tasks := out.Tasks
		if tasks == nil {
			tasks = []*domain.Task{}
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func (s *Server) updateTask(uc *usecase.UpdateTask) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := taskID(c)
		if !ok {
			return
		}

		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		patch, err := req.patch()
		if err != nil {
			s.respondError(c, err)
			return
		}

		out, err := uc.Execute(c.Request.Context(), usecase.UpdateTaskInput{TaskID: id, Patch: patch})
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, out.Task)
	}
}

func (s *Server) deleteTask(uc *usecase.DeleteTask) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := taskID(c)
		if !ok {
			return
		}

		if _, err := uc.Execute(c.Request.Context(), usecase.DeleteTaskInput{TaskID: id}); err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
	}
}

func (s *Server) generateSubtasks(uc *usecase.GenerateSubtasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := taskID(c)
		if !ok {
			return
		}

		out, err := uc.Execute(c.Request.Context(), usecase.GenerateSubtasksInput{TaskID: id})
		if err != nil {
			s.respondError(c, err)
			return
		}

		tasks := out.Tasks
		if tasks == nil {
			tasks = []*domain.Task{}
		}
		c.JSON(http.StatusCreated, tasks)
	}
}

// taskID parses the :id path parameter, responding 400 on failure.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto HTTP statuses. Anything
// unexpected is logged and hidden behind a generic 500.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrParentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidOrdering),
		errors.Is(err, domain.ErrInvalidDeadline):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if s.logger != nil {
			s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
