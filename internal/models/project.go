package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a user-owned container for one task tree. RootTaskID is set
// exactly once, when the first task is inserted.
type Project struct {
	ID         string    `gorm:"type:varchar(255);primarykey" json:"id"`
	UserID     string    `gorm:"type:varchar(255);not null;index" json:"user_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	RootTaskID *string   `gorm:"type:varchar(255)" json:"root_task_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
