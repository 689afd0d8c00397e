package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck-api/internal/dto"
	apierrors "github.com/taskdeck/taskdeck-api/internal/errors"
	"github.com/taskdeck/taskdeck-api/internal/middleware"
	"github.com/taskdeck/taskdeck-api/internal/services"
)

type AIHandler struct {
	split *services.SplitService
}

func NewAIHandler(split *services.SplitService) *AIHandler {
	return &AIHandler{
		split: split,
	}
}

// SplitTask decomposes a task into two sequential child tasks using the
// split advisor.
func (h *AIHandler) SplitTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.Auth())
		return
	}

	result, err := h.split.SplitTask(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SplitResultDTO{
		FirstTaskID:    result.FirstTask.ID,
		FirstTaskName:  result.FirstTask.Name,
		SecondTaskID:   result.SecondTask.ID,
		SecondTaskName: result.SecondTask.Name,
	})
}
