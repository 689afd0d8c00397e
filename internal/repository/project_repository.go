package repository

import (
	"github.com/taskdeck/taskdeck-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormProjectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: tx}
}

// Insert creates a new project
func (r *GormProjectRepository) Insert(userID, name string) (*models.Project, error) {
	project := &models.Project{
		UserID: userID,
		Name:   name,
	}
	if err := r.db.Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// FindByID finds a project by id, invisible across user boundaries
func (r *GormProjectRepository) FindByID(userID, projectID string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByTaskID resolves the project owning a task
func (r *GormProjectRepository) FindByTaskID(userID, taskID string) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Joins("JOIN tasks ON tasks.project_id = projects.id").
		Where("tasks.id = ? AND tasks.user_id = ?", taskID, userID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}
