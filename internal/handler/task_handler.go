package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service/task"
)

type TaskHandler struct {
	tasks  *task.Service
	logger *zap.Logger
}

func NewTaskHandler(tasks *task.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req struct {
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		ProjectID       *int       `json:"project_id"`
		DueDate         *time.Time `json:"due_date"`
		CollaboratorIDs []int      `json:"collaborator_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	created, err := h.tasks.Create(c.Request.Context(), userID, task.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		ProjectID:       req.ProjectID,
		DueDate:         req.DueDate,
		CollaboratorIDs: req.CollaboratorIDs,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    created,
	})
}

// List handles GET /tasks?filter=all|today|tomorrow|upcoming. The window is
// computed from the server clock at request time; an empty result is a
// normal 200 with an empty list.
func (h *TaskHandler) List(c *gin.Context) {
	userID := c.GetInt("user_id")

	filter := c.DefaultQuery("filter", "all")
	tasks, err := h.tasks.ListFiltered(c.Request.Context(), userID, filter, time.Now())
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("Tasks listed",
		zap.Int("user_id", userID),
		zap.String("filter", filter),
		zap.Int("count", len(tasks)),
	)
	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks retrieved successfully",
		"tasks":   tasks,
	})
}

// Update handles PUT /tasks/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	userID := c.GetInt("user_id")
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}

	var req struct {
		Title           *string    `json:"title"`
		Description     *string    `json:"description"`
		DueDate         *time.Time `json:"due_date"`
		ClearDueDate    bool       `json:"clear_due_date"`
		Status          *string    `json:"status"`
		CollaboratorIDs []int      `json:"collaborator_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	updated, err := h.tasks.Update(c.Request.Context(), userID, taskID, task.UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		DueDate:         req.DueDate,
		ClearDueDate:    req.ClearDueDate,
		Status:          req.Status,
		CollaboratorIDs: req.CollaboratorIDs,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    updated,
	})
}

// Delete handles DELETE /tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := c.GetInt("user_id")
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// ListByProject handles GET /projects/:id/tasks.
func (h *TaskHandler) ListByProject(c *gin.Context) {
	userID := c.GetInt("user_id")
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid project id"})
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), userID, projectID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks for the project retrieved successfully",
		"tasks":   tasks,
	})
}

// Board handles GET /projects/:id/board: the project's tasks partitioned
// into the three status columns, every column present even when empty.
func (h *TaskHandler) Board(c *gin.Context) {
	userID := c.GetInt("user_id")
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid project id"})
		return
	}

	board, err := h.tasks.Board(c.Request.Context(), userID, projectID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Board retrieved successfully",
		"board":   board,
	})
}
