package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck-api/internal/dto"
	apierrors "github.com/taskdeck/taskdeck-api/internal/errors"
	"github.com/taskdeck/taskdeck-api/internal/middleware"
	"github.com/taskdeck/taskdeck-api/internal/models"
	"github.com/taskdeck/taskdeck-api/internal/repository"
	"github.com/taskdeck/taskdeck-api/internal/services"
	"github.com/taskdeck/taskdeck-api/internal/utils"
)

type TaskHandler struct {
	hierarchy *services.HierarchyService
	ancestry  *services.AncestryResolver
}

func NewTaskHandler(hierarchy *services.HierarchyService, ancestry *services.AncestryResolver) *TaskHandler {
	return &TaskHandler{
		hierarchy: hierarchy,
		ancestry:  ancestry,
	}
}

// CompleteTask marks a task completed and returns the next-task suggestion
// plus the refreshed active task list.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	result, err := h.hierarchy.Complete(userID, c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	response := dto.CompleteResultDTO{
		ActiveTasks: dto.ToTaskDTOs(result.ActiveTasks),
	}
	if result.NextTask != nil {
		next := dto.ToTaskDTO(*result.NextTask)
		response.NextTask = &next
	}

	c.JSON(http.StatusOK, response)
}

// UpdateTaskStatus sets a task's status explicitly
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Invalid request body"))
		return
	}

	task, err := h.hierarchy.StatusUpdate(userID, c.Param("id"), req.Status)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask patches a task's name, priority or date
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.Respond(c, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Invalid request body"))
		return
	}

	var patch repository.TaskPatch
	if name, ok := rawReq["name"].(string); ok {
		patch.Name = &name
	}
	if priority, ok := rawReq["priority"].(string); ok {
		patch.Priority = &priority
	}
	if _, ok := rawReq["date"]; ok {
		// date was provided (might be null)
		if rawReq["date"] == nil {
			patch.ClearDate = true
		} else if dateStr, ok := rawReq["date"].(string); ok {
			parsed, err := time.Parse(time.RFC3339, dateStr)
			if err != nil {
				apierrors.Respond(c, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Invalid date format"))
				return
			}
			patch.Date = &parsed
		}
	}

	task, err := h.hierarchy.UpdateTask(userID, c.Param("id"), patch)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task row
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	task, err := h.hierarchy.Delete(userID, c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// GetAncestry returns a task's ancestor chain, root first, excluding the
// task itself.
func (h *TaskHandler) GetAncestry(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	chain, err := h.ancestry.Resolve(userID, c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(chain))
}

// ListActiveTasks returns the caller's active tasks
func (h *TaskHandler) ListActiveTasks(c *gin.Context) {
	h.listByStatus(c, models.TaskStatusActive)
}

// ListUnprocessedTasks returns the caller's unprocessed tasks
func (h *TaskHandler) ListUnprocessedTasks(c *gin.Context) {
	h.listByStatus(c, models.TaskStatusUnprocessed)
}

func (h *TaskHandler) listByStatus(c *gin.Context, status models.TaskStatus) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	params := utils.GetPaginationParams(c)
	order := c.DefaultQuery("order", "desc")

	tasks, total, err := h.hierarchy.ListByStatus(userID, status, order, params.Offset, params.Limit)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
