package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel()
	input := "Summarize this text for me."

	task, err := NewTask(input)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.Input != input {
		t.Errorf("Expected input %s, got %s", input, task.Input)
	}

	if task.Status != TaskStatusPending {
		t.Errorf("Expected status %s, got %s", TaskStatusPending, task.Status)
	}

	if task.Result != nil || task.Error != nil {
		t.Error("Expected nil result and error on a new task")
	}

	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Errorf("Expected CreatedAt == UpdatedAt, got %v and %v", task.CreatedAt, task.UpdatedAt)
	}

	// Test empty input
	_, err = NewTask("")
	if err != ErrEmptyTaskInput {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskInput, err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()
	result := "a result"
	errMsg := "an error"

	testCases := []struct {
		name    string
		modify  func(task *Task)
		wantErr error
	}{
		{
			name:    "valid pending task",
			modify:  func(task *Task) {},
			wantErr: nil,
		},
		{
			name:    "nil ID",
			modify:  func(task *Task) { task.ID = uuid.Nil },
			wantErr: ErrEmptyTaskID,
		},
		{
			name:    "empty input",
			modify:  func(task *Task) { task.Input = "" },
			wantErr: ErrEmptyTaskInput,
		},
		{
			name:    "unknown status",
			modify:  func(task *Task) { task.Status = "archived" },
			wantErr: ErrInvalidTaskStatus,
		},
		{
			name:    "result on non-completed task",
			modify:  func(task *Task) { task.Result = &result },
			wantErr: ErrResultErrorShape,
		},
		{
			name: "error on non-failed task",
			modify: func(task *Task) {
				task.Status = TaskStatusCompleted
				task.Result = &result
				task.Error = &errMsg
			},
			wantErr: ErrResultErrorShape,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			task, err := NewTask("some input")
			if err != nil {
				t.Fatalf("NewTask failed: %v", err)
			}

			tc.modify(task)

			if got := task.Validate(); got != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, got)
			}
		})
	}
}

func TestTaskTransitions(t *testing.T) {
	t.Parallel()
	task, err := NewTask("some input")
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}

	if err := task.MarkProcessing(); err != nil {
		t.Fatalf("Expected no error moving to processing, got %v", err)
	}

	// Idempotent re-entry on redelivery
	if err := task.MarkProcessing(); err != nil {
		t.Fatalf("Expected processing re-entry to succeed, got %v", err)
	}

	task.MarkCompleted("Hi there")
	if task.Status != TaskStatusCompleted {
		t.Errorf("Expected status %s, got %s", TaskStatusCompleted, task.Status)
	}
	if task.Result == nil || *task.Result != "Hi there" {
		t.Error("Expected result to be set on completion")
	}
	if task.Error != nil {
		t.Error("Expected error to be cleared on completion")
	}

	// Terminal states reject a move back to processing
	if err := task.MarkProcessing(); err != ErrInvalidTaskStatus {
		t.Errorf("Expected %v moving terminal task to processing, got %v", ErrInvalidTaskStatus, err)
	}

	failed, err := NewTask("other input")
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	failed.MarkFailed("AI provider error: rate_limited")
	if failed.Status != TaskStatusFailed {
		t.Errorf("Expected status %s, got %s", TaskStatusFailed, failed.Status)
	}
	if failed.Error == nil || failed.Result != nil {
		t.Error("Expected error set and result cleared on failure")
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	t.Parallel()
	if TaskStatusPending.IsTerminal() || TaskStatusProcessing.IsTerminal() {
		t.Error("pending and processing must not be terminal")
	}
	if !TaskStatusCompleted.IsTerminal() || !TaskStatusFailed.IsTerminal() {
		t.Error("completed and failed must be terminal")
	}
}
