package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpipe/internal/domain"
	"github.com/phrazzld/taskpipe/internal/queue"
	"github.com/phrazzld/taskpipe/internal/redact"
	"github.com/phrazzld/taskpipe/internal/store"
)

// TaskService provides the task operations consumed by the HTTP layer.
type TaskService interface {
	// SubmitTask creates a pending task record and publishes the
	// corresponding work item. Returns the pending task, or a
	// *SubmissionError if either the store write or the publish fails.
	// A publish failure never strands an un-publishable pending record.
	SubmitTask(ctx context.Context, input string) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns store.ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves all tasks, newest first.
	ListTasks(ctx context.Context) ([]*domain.Task, error)
}

// queuedErrorMessage is persisted on a task whose work item could not be
// published. Kept generic on purpose; broker errors carry endpoints and
// credentials that do not belong in a client-visible field.
const queuedErrorMessage = "task could not be queued for processing"

// SubmissionError wraps failures of the synchronous submission path.
type SubmissionError struct {
	// Operation is the step that failed (e.g., "create", "publish")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for SubmissionError.
func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task submission %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task submission %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store     store.TaskStore
	publisher queue.Publisher
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService backed by the given store and
// broker publisher.
func NewTaskService(
	taskStore store.TaskStore,
	publisher queue.Publisher,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if publisher == nil {
		return nil, errors.New("publisher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:     taskStore,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// SubmitTask implements TaskService.SubmitTask
func (s *taskServiceImpl) SubmitTask(ctx context.Context, input string) (*domain.Task, error) {
	task, err := domain.NewTask(input)
	if err != nil {
		return nil, &SubmissionError{Operation: "create", Message: "invalid task input", Err: err}
	}

	if err := s.store.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task record",
			slog.String("error", redact.Error(err)))
		return nil, &SubmissionError{Operation: "create", Message: "failed to persist task", Err: err}
	}

	item := queue.WorkItem{TaskID: task.ID.String(), UserInput: task.Input}
	if err := s.publisher.Publish(ctx, item); err != nil {
		s.logger.Error("failed to publish work item",
			slog.String("task_id", task.ID.String()),
			slog.String("error", redact.Error(err)))

		// The record exists but no message does, so nothing would ever
		// process it. Mark it failed rather than stranding it in pending.
		updateErr := s.store.UpdateStatus(ctx, task.ID, store.TaskUpdate{
			Status: domain.TaskStatusFailed,
			Error:  queuedErrorMessage,
		})
		if updateErr != nil {
			s.logger.Error("failed to mark unpublished task as failed",
				slog.String("task_id", task.ID.String()),
				slog.String("error", redact.Error(updateErr)))
		}

		return nil, &SubmissionError{Operation: "publish", Message: "failed to enqueue task", Err: err}
	}

	s.logger.Info("task submitted",
		slog.String("task_id", task.ID.String()))

	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.store.GetByID(ctx, id)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.store.List(ctx)
}
