package repository

import (
	"time"

	"github.com/taskdeck/taskdeck-api/internal/models"
	"gorm.io/gorm"
)

// TaskRepository defines the interface for task data access. Every method is
// scoped by user id; no call can read or write rows owned by another user.
// WithTx rebinds the repository to a transaction handle so a service can run
// a read-modify-write sequence atomically.
type TaskRepository interface {
	// WithTx returns a repository bound to the given transaction
	WithTx(tx *gorm.DB) TaskRepository

	// InsertRootTask creates a project's first task and sets the project's
	// root task id if it is unset
	InsertRootTask(userID, projectID, name string) (*models.Task, error)

	// InsertChildTask creates a task under an existing parent
	InsertChildTask(userID, projectID, name, parentID string) (*models.Task, error)

	// FindByID finds a task by id, invisible across user boundaries
	FindByID(userID, taskID string) (*models.Task, error)

	// FindByIDForUpdate finds a task and locks its row for the duration of
	// the surrounding transaction
	FindByIDForUpdate(userID, taskID string) (*models.Task, error)

	// FindByIDAnyOwner finds a task regardless of owner. Used only where the
	// caller distinguishes Permission from NotFound.
	FindByIDAnyOwner(taskID string) (*models.Task, error)

	// FindChildren lists the tasks whose parent id equals parentID
	FindChildren(userID, parentID string) ([]models.Task, error)

	// FindAllInProject lists every task in a project
	FindAllInProject(userID, projectID string) ([]models.Task, error)

	// FindByStatus lists tasks in a status ordered by created_at; limit <= 0
	// disables pagination
	FindByStatus(userID string, status models.TaskStatus, order string, offset, limit int) ([]models.Task, int64, error)

	// UpdateStatus writes a status unconditionally; state-machine validation
	// lives in the services layer
	UpdateStatus(userID, taskID string, status models.TaskStatus) (*models.Task, error)

	// UpdateFields patches non-status task fields
	UpdateFields(userID, taskID string, patch TaskPatch) (*models.Task, error)

	// Delete removes a single task row; children are left in place
	Delete(userID, taskID string) (*models.Task, error)
}

// TaskPatch holds optional field updates for a task
type TaskPatch struct {
	Name      *string
	Priority  *string
	Date      *time.Time
	ClearDate bool
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// WithTx returns a repository bound to the given transaction
	WithTx(tx *gorm.DB) ProjectRepository

	// Insert creates a new project
	Insert(userID, name string) (*models.Project, error)

	// FindByID finds a project by id, invisible across user boundaries
	FindByID(userID, projectID string) (*models.Project, error)

	// FindByTaskID resolves the project owning a task
	FindByTaskID(userID, taskID string) (*models.Project, error)
}
