package repository

import (
	"github.com/taskdeck/taskdeck-api/internal/database"
	"github.com/taskdeck/taskdeck-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormTaskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: tx}
}

// InsertRootTask creates a project's first task and records it as the
// project's root. The root task id is written exactly once.
func (r *GormTaskRepository) InsertRootTask(userID, projectID, name string) (*models.Task, error) {
	var project models.Project
	if err := r.db.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:    userID,
		ProjectID: projectID,
		Name:      name,
	}
	if err := r.db.Create(task).Error; err != nil {
		return nil, err
	}

	if project.RootTaskID == nil {
		err := r.db.Model(&models.Project{}).
			Where("id = ? AND user_id = ? AND root_task_id IS NULL", projectID, userID).
			Update("root_task_id", task.ID).Error
		if err != nil {
			return nil, err
		}
	}

	return task, nil
}

// InsertChildTask creates a task under an existing parent
func (r *GormTaskRepository) InsertChildTask(userID, projectID, name, parentID string) (*models.Task, error) {
	var parent models.Task
	if err := r.db.Where("id = ? AND user_id = ?", parentID, userID).First(&parent).Error; err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:    userID,
		ProjectID: projectID,
		Name:      name,
		ParentID:  &parent.ID,
	}
	if err := r.db.Create(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

// FindByID finds a task by id, invisible across user boundaries
func (r *GormTaskRepository) FindByID(userID, taskID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDForUpdate finds a task and locks its row until the surrounding
// transaction ends. This serializes the completion cascade per parent so
// concurrent sibling completions cannot both skip (or both apply) the
// promotion.
func (r *GormTaskRepository) FindByIDForUpdate(userID, taskID string) (*models.Task, error) {
	query := r.db
	// sqlite has no row locks; its writes are single-writer anyway
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var task models.Task
	if err := query.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDAnyOwner finds a task regardless of owner
func (r *GormTaskRepository) FindByIDAnyOwner(taskID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindChildren lists the tasks whose parent id equals parentID
func (r *GormTaskRepository) FindChildren(userID, parentID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("parent_id = ? AND user_id = ?", parentID, userID).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindAllInProject lists every task in a project
func (r *GormTaskRepository) FindAllInProject(userID, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByStatus lists tasks in a status ordered by created_at
func (r *GormTaskRepository) FindByStatus(userID string, status models.TaskStatus, order string, offset, limit int) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{}).Where("user_id = ? AND status = ?", userID, status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if order == "asc" {
		query = query.Order("created_at ASC")
	} else {
		query = query.Order("created_at DESC")
	}

	var tasks []models.Task
	if err := query.Scopes(database.Paginate(offset, limit)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateStatus writes a status unconditionally, scoped to (id, user)
func (r *GormTaskRepository) UpdateStatus(userID, taskID string, status models.TaskStatus) (*models.Task, error) {
	task, err := r.FindByID(userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if err := r.db.Save(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateFields patches non-status task fields
func (r *GormTaskRepository) UpdateFields(userID, taskID string, patch TaskPatch) (*models.Task, error) {
	task, err := r.FindByID(userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		task.Name = *patch.Name
	}
	if patch.Priority != nil {
		task.Priority = patch.Priority
	}
	if patch.ClearDate {
		task.Date = nil
	} else if patch.Date != nil {
		task.Date = patch.Date
	}

	if err := r.db.Save(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

// Delete removes a single task row scoped to (id, user). Children keep their
// parent pointer; the cascade never deletes.
func (r *GormTaskRepository) Delete(userID, taskID string) (*models.Task, error) {
	task, err := r.FindByID(userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := r.db.Delete(&models.Task{}, "id = ? AND user_id = ?", taskID, userID).Error; err != nil {
		return nil, err
	}

	return task, nil
}
