package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the processing state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskInput    = errors.New("task input cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrResultErrorShape  = errors.New("result and error must match the task status")
)

// Task represents a unit of user-submitted text awaiting or having
// undergone AI processing. It tracks both the original input and the
// lifecycle state of the work.
//
// Exactly one of Result/Error is non-nil, and only when the status is
// completed or failed respectively.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	Input     string     `json:"input"`
	Status    TaskStatus `json:"status"`
	Result    *string    `json:"result"`
	Error     *string    `json:"error"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTask creates a new Task with the given input text.
// It generates a new UUID for the task ID, sets the status to pending,
// and sets the creation/update timestamps to the same instant.
// Returns an error if validation fails.
func NewTask(input string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Input:     input,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Input == "" {
		return ErrEmptyTaskInput
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.Result != nil && t.Status != TaskStatusCompleted {
		return ErrResultErrorShape
	}

	if t.Error != nil && t.Status != TaskStatusFailed {
		return ErrResultErrorShape
	}

	return nil
}

// IsTerminal reports whether the status is a final lifecycle state.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// MarkProcessing moves the task into the processing state. Re-entry from
// processing is allowed so that broker redeliveries stay idempotent.
func (t *Task) MarkProcessing() error {
	if t.Status.IsTerminal() {
		return ErrInvalidTaskStatus
	}

	t.Status = TaskStatusProcessing
	t.Result = nil
	t.Error = nil
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted moves the task into the completed state with the given
// result, clearing any previous error.
func (t *Task) MarkCompleted(result string) {
	t.Status = TaskStatusCompleted
	t.Result = &result
	t.Error = nil
	t.UpdatedAt = time.Now().UTC()
}

// MarkFailed moves the task into the failed state with the given
// sanitized error text, clearing any previous result.
func (t *Task) MarkFailed(errMsg string) {
	t.Status = TaskStatusFailed
	t.Result = nil
	t.Error = &errMsg
	t.UpdatedAt = time.Now().UTC()
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}
