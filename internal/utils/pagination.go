package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams reads the page and limit query values. Out-of-range or
// unparseable input is clamped to the defaults rather than rejected.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page := queryInt(c, "page", constants.MinPage)
	if page < constants.MinPage {
		page = constants.MinPage
	}

	limit := queryInt(c, "limit", constants.DefaultPageSize)
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - constants.MinPage) * limit,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}
