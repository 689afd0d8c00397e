package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/taskdeck/taskdeck-api/internal/constants"
	apierrors "github.com/taskdeck/taskdeck-api/internal/errors"
	"github.com/taskdeck/taskdeck-api/internal/models"
	"github.com/taskdeck/taskdeck-api/internal/repository"
)

// SplitService decomposes a task into two sequential child tasks using an
// external advisor. The advisor call happens before the mutating transaction
// opens, so a slow or failing external call never holds a database lock.
type SplitService struct {
	db             *gorm.DB
	taskRepo       repository.TaskRepository
	projectRepo    repository.ProjectRepository
	advisor        SplitAdvisor
	advisorTimeout time.Duration
}

// NewSplitService creates a new SplitService. advisor may be nil when no API
// key is configured; SplitTask then fails with an External error.
func NewSplitService(db *gorm.DB, taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, advisor SplitAdvisor, advisorTimeout time.Duration) *SplitService {
	return &SplitService{
		db:             db,
		taskRepo:       taskRepo,
		projectRepo:    projectRepo,
		advisor:        advisor,
		advisorTimeout: advisorTimeout,
	}
}

// SplitResult holds the two child tasks created by a split, in work order.
type SplitResult struct {
	FirstTask  models.Task
	SecondTask models.Task
}

// SplitTask decomposes a task's remaining work into two phases. On success
// exactly two active children exist under the subject and the subject is
// waiting; on any failure no rows change.
//
// Unlike the other operations this one distinguishes Permission from
// NotFound: the subject is looked up without a user scope and ownership is
// checked explicitly.
func (s *SplitService) SplitTask(ctx context.Context, userID, taskID string) (*SplitResult, error) {
	if taskID == "" {
		return nil, apierrors.Validation(apierrors.ErrCodeInvalidInput, "Task id is required")
	}
	if s.advisor == nil {
		return nil, apierrors.External("ADVISOR_NOT_CONFIGURED", "Split advisor is not configured", nil)
	}

	task, err := s.taskRepo.FindByIDAnyOwner(taskID)
	if err != nil {
		return nil, mapDBError(err)
	}
	if task.UserID != userID {
		return nil, apierrors.Permission()
	}
	if task.Status == models.TaskStatusCompleted || task.Status == models.TaskStatusWaiting {
		return nil, apierrors.Validation("TASK_NOT_SPLITTABLE", "Only workable tasks can be split")
	}

	project, err := s.projectRepo.FindByTaskID(userID, taskID)
	if err != nil {
		return nil, mapDBError(err)
	}

	projectTasks, err := s.taskRepo.FindAllInProject(userID, project.ID)
	if err != nil {
		return nil, mapDBError(err)
	}
	graph := BuildTaskGraph(projectTasks)

	advisorCtx, cancel := context.WithTimeout(ctx, s.advisorTimeout)
	defer cancel()

	suggestion, err := s.advisor.GenerateSplit(advisorCtx, task.Name, graph)
	if err != nil {
		return nil, apierrors.External(apierrors.ErrCodeOpenAIError, "Split advisor call failed", err)
	}

	firstName := truncatePhaseName(suggestion.FirstPhase, constants.MaxSplitPhaseNameLength)
	secondName := truncatePhaseName(suggestion.SecondPhase, constants.MaxSplitPhaseNameLength)

	var result SplitResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.taskRepo.WithTx(tx)

		// The advisor call ran outside this transaction; the subject may have
		// been completed or split in the meantime. Re-check under the row lock.
		subject, err := tasks.FindByIDForUpdate(userID, task.ID)
		if err != nil {
			return mapDBError(err)
		}
		if subject.Status == models.TaskStatusCompleted || subject.Status == models.TaskStatusWaiting {
			return apierrors.Validation("TASK_NOT_SPLITTABLE", "Only workable tasks can be split")
		}

		first, err := tasks.InsertChildTask(userID, project.ID, firstName, task.ID)
		if err != nil {
			return mapDBError(err)
		}
		if first, err = tasks.UpdateStatus(userID, first.ID, models.TaskStatusActive); err != nil {
			return mapDBError(err)
		}

		second, err := tasks.InsertChildTask(userID, project.ID, secondName, task.ID)
		if err != nil {
			return mapDBError(err)
		}
		if second, err = tasks.UpdateStatus(userID, second.ID, models.TaskStatusActive); err != nil {
			return mapDBError(err)
		}

		if _, err := tasks.UpdateStatus(userID, task.ID, models.TaskStatusWaiting); err != nil {
			return mapDBError(err)
		}

		result.FirstTask = *first
		result.SecondTask = *second
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// truncatePhaseName cuts a phase name to the display limit without breaking
// multi-byte characters.
func truncatePhaseName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max])
}
