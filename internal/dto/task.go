package dto

import (
	"time"

	"github.com/taskdeck/taskdeck-api/internal/models"
	"github.com/taskdeck/taskdeck-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	ProjectID string            `json:"project_id"`
	Name      string            `json:"name"`
	Status    models.TaskStatus `json:"status"`
	ParentID  *string           `json:"parent_id"`
	Priority  *string           `json:"priority"`
	Date      *time.Time        `json:"date"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CompleteResultDTO is the response of the complete operation: an optional
// next-task suggestion plus the refreshed active task list.
type CompleteResultDTO struct {
	NextTask    *TaskDTO  `json:"next_task"`
	ActiveTasks []TaskDTO `json:"active_tasks"`
}

// SplitResultDTO is the response of the split operation. The first task
// always represents earlier work than the second.
type SplitResultDTO struct {
	FirstTaskID    string `json:"first_task_id"`
	FirstTaskName  string `json:"first_task_name"`
	SecondTaskID   string `json:"second_task_id"`
	SecondTaskName string `json:"second_task_name"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:        task.ID,
		UserID:    task.UserID,
		ProjectID: task.ProjectID,
		Name:      task.Name,
		Status:    task.Status,
		ParentID:  task.ParentID,
		Priority:  task.Priority,
		Date:      task.Date,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of Task models to DTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
