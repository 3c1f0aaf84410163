package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service/project"
)

type ProjectHandler struct {
	projects *project.Service
	logger   *zap.Logger
}

func NewProjectHandler(projects *project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		CollaboratorIDs []int  `json:"collaborator_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	created, err := h.projects.Create(c.Request.Context(), userID, project.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		CollaboratorIDs: req.CollaboratorIDs,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": created,
	})
}

// List handles GET /projects.
func (h *ProjectHandler) List(c *gin.Context) {
	userID := c.GetInt("user_id")

	projects, err := h.projects.ListForUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Projects retrieved successfully",
		"projects": projects,
	})
}

// Update handles PUT /projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	userID := c.GetInt("user_id")
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid project id"})
		return
	}

	var req struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		CollaboratorIDs []int   `json:"collaborator_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	updated, err := h.projects.Update(c.Request.Context(), userID, projectID, project.UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		CollaboratorIDs: req.CollaboratorIDs,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": updated,
	})
}

// Delete handles DELETE /projects/:id.
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID := c.GetInt("user_id")
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid project id"})
		return
	}

	if err := h.projects.Delete(c.Request.Context(), userID, projectID); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
