package services

import (
	"gorm.io/gorm"

	"github.com/taskdeck/taskdeck-api/internal/constants"
	apierrors "github.com/taskdeck/taskdeck-api/internal/errors"
	"github.com/taskdeck/taskdeck-api/internal/models"
	"github.com/taskdeck/taskdeck-api/internal/repository"
)

// AncestryResolver walks a task's parent chain for breadcrumb rendering.
type AncestryResolver struct {
	db       *gorm.DB
	taskRepo repository.TaskRepository
}

// NewAncestryResolver creates a new AncestryResolver
func NewAncestryResolver(db *gorm.DB, taskRepo repository.TaskRepository) *AncestryResolver {
	return &AncestryResolver{
		db:       db,
		taskRepo: taskRepo,
	}
}

// Resolve returns the ancestor chain of a task, root first, excluding the
// task itself. Each step is a fresh user-scoped lookup, so a chain crossing
// into another user's tasks fails with NotFound. The walk is bounded by
// MaxAncestryDepth; exceeding it means the tree invariant is broken (a
// cycle) and the walk fails instead of looping.
func (r *AncestryResolver) Resolve(userID, taskID string) ([]models.Task, error) {
	if taskID == "" {
		return nil, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Task id is required")
	}

	var chain []models.Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		tasks := r.taskRepo.WithTx(tx)

		current, err := tasks.FindByID(userID, taskID)
		if err != nil {
			return mapDBError(err)
		}

		for current.ParentID != nil {
			if len(chain) >= constants.MaxAncestryDepth {
				return apierrors.MaxDepthExceeded()
			}

			parent, err := tasks.FindByID(userID, *current.ParentID)
			if err != nil {
				return mapDBError(err)
			}

			chain = append(chain, *parent)
			current = parent
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Walked leaf-to-root; callers want root first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain, nil
}
