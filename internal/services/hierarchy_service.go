package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/taskdeck/taskdeck-api/internal/constants"
	apierrors "github.com/taskdeck/taskdeck-api/internal/errors"
	"github.com/taskdeck/taskdeck-api/internal/models"
	"github.com/taskdeck/taskdeck-api/internal/repository"
)

// HierarchyService owns the transaction boundaries for project and task
// mutations, including the completion cascade. All reads and writes inside
// one operation share a single transaction; a failure aborts the whole
// operation with no partial writes.
type HierarchyService struct {
	db          *gorm.DB
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewHierarchyService creates a new HierarchyService
func NewHierarchyService(db *gorm.DB, taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *HierarchyService {
	return &HierarchyService{
		db:          db,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// CompleteResult is the outcome of completing a task: an optional suggestion
// for what to work on next, and the caller's refreshed active task list.
type CompleteResult struct {
	NextTask    *models.Task
	ActiveTasks []models.Task
}

// ProjectCreate creates a project and its root task atomically. The root
// task starts unprocessed; promotion to active happens via StatusUpdate.
func (s *HierarchyService) ProjectCreate(userID, projectName, taskName string) (*models.Task, error) {
	if err := validateName(projectName); err != nil {
		return nil, err
	}
	if err := validateName(taskName); err != nil {
		return nil, err
	}

	var root *models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		project, err := s.projectRepo.WithTx(tx).Insert(userID, strings.TrimSpace(projectName))
		if err != nil {
			return mapDBError(err)
		}

		root, err = s.taskRepo.WithTx(tx).InsertRootTask(userID, project.ID, strings.TrimSpace(taskName))
		if err != nil {
			return mapDBError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return root, nil
}

// Complete marks a task completed and runs the single-level promotion rule
// on its parent. The parent row is locked during the children-completeness
// check so concurrent sibling completions serialize: the last child to
// complete promotes the parent exactly once.
func (s *HierarchyService) Complete(userID, taskID string) (*CompleteResult, error) {
	if taskID == "" {
		return nil, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Task id is required")
	}

	var result CompleteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.taskRepo.WithTx(tx)

		task, err := tasks.FindByID(userID, taskID)
		if err != nil {
			return mapDBError(err)
		}
		if task.Status == models.TaskStatusCompleted {
			return apierrors.Validation("TASK_ALREADY_COMPLETED", "Task is already completed")
		}

		completed, err := tasks.UpdateStatus(userID, taskID, models.TaskStatusCompleted)
		if err != nil {
			return mapDBError(err)
		}

		next, err := s.cascadeParent(tasks, userID, completed)
		if err != nil {
			return err
		}
		result.NextTask = next

		active, _, err := tasks.FindByStatus(userID, models.TaskStatusActive, "desc", 0, 0)
		if err != nil {
			return mapDBError(err)
		}
		result.ActiveTasks = active

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// StatusUpdate writes an explicit status. A write to completed triggers the
// same parent cascade as Complete. Completed tasks never reopen.
func (s *HierarchyService) StatusUpdate(userID, taskID string, status models.TaskStatus) (*models.Task, error) {
	if !status.IsValid() {
		return nil, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Unknown task status")
	}

	var updated *models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.taskRepo.WithTx(tx)

		task, err := tasks.FindByID(userID, taskID)
		if err != nil {
			return mapDBError(err)
		}
		if task.Status == models.TaskStatusCompleted && status != models.TaskStatusCompleted {
			return apierrors.Validation("TASK_ALREADY_COMPLETED", "Completed tasks cannot be reopened")
		}

		updated, err = tasks.UpdateStatus(userID, taskID, status)
		if err != nil {
			return mapDBError(err)
		}

		if status == models.TaskStatusCompleted {
			if _, err := s.cascadeParent(tasks, userID, updated); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// UpdateTask patches a task's name, priority or scheduling date. Status is
// never touched here; StatusUpdate owns the state machine.
func (s *HierarchyService) UpdateTask(userID, taskID string, patch repository.TaskPatch) (*models.Task, error) {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}

	var updated *models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = s.taskRepo.WithTx(tx).UpdateFields(userID, taskID, patch)
		if err != nil {
			return mapDBError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a task row. There is no cascade to children; descendants of
// a deleted task keep their parent pointer.
func (s *HierarchyService) Delete(userID, taskID string) (*models.Task, error) {
	var deleted *models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = s.taskRepo.WithTx(tx).Delete(userID, taskID)
		if err != nil {
			return mapDBError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// ListByStatus returns the caller's tasks in one status, newest first by
// default.
func (s *HierarchyService) ListByStatus(userID string, status models.TaskStatus, order string, offset, limit int) ([]models.Task, int64, error) {
	if !status.IsValid() {
		return nil, 0, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Unknown task status")
	}
	if order != "" && order != "asc" && order != "desc" {
		return nil, 0, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Order must be asc or desc")
	}

	tasks, total, err := s.taskRepo.FindByStatus(userID, status, order, offset, limit)
	if err != nil {
		return nil, 0, mapDBError(err)
	}

	return tasks, total, nil
}

// cascadeParent runs the single-level promotion rule for a freshly completed
// task. It locks the parent row, and if the parent was waiting and every
// child is now completed, promotes the parent to active and returns it.
// Otherwise it returns the first still-active sibling as a best-effort hint,
// or nil. Promotion does not recurse: a grandparent that is also waiting is
// re-evaluated only when the promoted parent itself completes.
func (s *HierarchyService) cascadeParent(tasks repository.TaskRepository, userID string, completed *models.Task) (*models.Task, error) {
	if completed.ParentID == nil {
		return nil, nil
	}

	parent, err := tasks.FindByIDForUpdate(userID, *completed.ParentID)
	if err != nil {
		// A dangling parent pointer (parent deleted) ends the cascade.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapDBError(err)
	}

	if parent.Status != models.TaskStatusWaiting {
		return nil, nil
	}

	children, err := tasks.FindChildren(userID, parent.ID)
	if err != nil {
		return nil, mapDBError(err)
	}

	allCompleted := true
	for _, child := range children {
		if child.Status != models.TaskStatusCompleted {
			allCompleted = false
			break
		}
	}

	if allCompleted {
		promoted, err := tasks.UpdateStatus(userID, parent.ID, models.TaskStatusActive)
		if err != nil {
			return nil, mapDBError(err)
		}
		return promoted, nil
	}

	for i := range children {
		if children[i].Status == models.TaskStatusActive {
			return &children[i], nil
		}
	}

	return nil, nil
}

// validateName checks the shared name rules for projects and tasks.
func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return apierrors.Validation(apierrors.ErrCodeInvalidInput, "Name is required")
	}
	if len([]rune(trimmed)) > constants.MaxTaskNameLength {
		return apierrors.Validation(apierrors.ErrCodeInvalidInput, "Name is too long")
	}
	return nil
}

// mapDBError converts storage errors to the service error taxonomy.
func mapDBError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.NotFound()
	}
	return apierrors.InfraDB(err)
}
