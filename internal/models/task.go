package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusUnprocessed TaskStatus = "unprocessed"
	TaskStatusActive      TaskStatus = "active"
	TaskStatusCompleted   TaskStatus = "completed"
	TaskStatusWaiting     TaskStatus = "waiting"
)

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusUnprocessed, TaskStatusActive, TaskStatusCompleted, TaskStatusWaiting:
		return true
	}
	return false
}

// Task is a node in a project's decomposition tree. ParentID is the single
// source of truth for the tree shape; a task with a nil ParentID is the
// project's root task.
type Task struct {
	ID        string     `gorm:"type:varchar(255);primarykey" json:"id"`
	UserID    string     `gorm:"type:varchar(255);not null;index" json:"user_id"`
	ProjectID string     `gorm:"type:varchar(255);not null;index" json:"project_id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Status    TaskStatus `gorm:"type:varchar(20);not null;default:'unprocessed'" json:"status"`
	ParentID  *string    `gorm:"type:varchar(255);index" json:"parent_id"`
	Priority  *string    `gorm:"type:varchar(50)" json:"priority"`
	Date      *time.Time `json:"date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// BeforeCreate assigns a UUID primary key and the initial status when none
// is set.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskStatusUnprocessed
	}
	return nil
}
