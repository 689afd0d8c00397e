package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck-api/internal/dto"
	apierrors "github.com/taskdeck/taskdeck-api/internal/errors"
	"github.com/taskdeck/taskdeck-api/internal/middleware"
	"github.com/taskdeck/taskdeck-api/internal/services"
)

type ProjectHandler struct {
	hierarchy *services.HierarchyService
}

func NewProjectHandler(hierarchy *services.HierarchyService) *ProjectHandler {
	return &ProjectHandler{
		hierarchy: hierarchy,
	}
}

// CreateProject creates a project together with its root task and returns
// the root task.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	type CreateProjectRequest struct {
		ProjectName string `json:"project_name" binding:"required"`
		TaskName    string `json:"task_name" binding:"required"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Invalid request body"))
		return
	}

	root, err := h.hierarchy.ProjectCreate(userID, req.ProjectName, req.TaskName)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*root))
}
