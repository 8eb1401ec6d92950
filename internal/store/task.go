package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpipe/internal/domain"
)

// TaskUpdate describes a status transition to apply to a stored task.
// Result is persisted only when Status is completed; Error only when
// Status is failed. The store clears the other column in the same
// statement so the result/error exclusivity invariant holds at all times.
type TaskUpdate struct {
	Status domain.TaskStatus
	Result string
	Error  string
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// UpdateStatus applies a status transition to an existing task.
	// The write is atomic with respect to concurrent updates on the same
	// id: status, result, error and updated_at change together or not at
	// all. Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, update TaskUpdate) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves all tasks ordered by creation time, newest first.
	// Returns an empty slice when the store holds no tasks.
	List(ctx context.Context) ([]*domain.Task, error)
}
