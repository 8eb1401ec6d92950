package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpipe/internal/domain"
	"github.com/phrazzld/taskpipe/internal/processing"
	"github.com/phrazzld/taskpipe/internal/queue"
	"github.com/phrazzld/taskpipe/internal/redact"
	"github.com/phrazzld/taskpipe/internal/store"
)

// Consumer reconciles stored tasks with the outcome of the AI call for
// each delivered work item.
type Consumer struct {
	store     store.TaskStore
	processor processing.Processor
	timeout   time.Duration
	logger    *slog.Logger
}

// NewConsumer creates a Consumer. timeout bounds each AI call; a task is
// never left in processing past it.
func NewConsumer(
	taskStore store.TaskStore,
	processor processing.Processor,
	timeout time.Duration,
	logger *slog.Logger,
) (*Consumer, error) {
	if taskStore == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if processor == nil {
		return nil, errors.New("processor cannot be nil")
	}
	if timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		store:     taskStore,
		processor: processor,
		timeout:   timeout,
		logger:    logger.With(slog.String("component", "task_consumer")),
	}, nil
}

// HandleWorkItem is the queue.Handler for this consumer. It drives the
// referenced task through processing to a terminal state and reports the
// message disposition:
//
//   - Ack for every terminal business outcome, completed or failed
//   - Reject for messages that cannot ever succeed (bad id, unknown task)
//   - Retry when the store is unavailable, leaving redelivery to the broker
func (c *Consumer) HandleWorkItem(ctx context.Context, item queue.WorkItem) queue.Outcome {
	logger := c.logger.With(slog.String("task_id", item.TaskID))

	taskID, err := uuid.Parse(item.TaskID)
	if err != nil {
		logger.Error("rejecting work item with invalid task id",
			slog.String("error", err.Error()))
		return queue.Reject
	}

	// Idempotent on redelivery: a task already in processing re-enters
	// processing without error.
	err = c.store.UpdateStatus(ctx, taskID, store.TaskUpdate{Status: domain.TaskStatusProcessing})
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Error("rejecting work item for unknown task")
			return queue.Reject
		}
		logger.Warn("store unavailable, leaving message for redelivery",
			slog.String("error", err.Error()))
		return queue.Retry
	}

	logger.Info("processing task")

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, procErr := c.processor.Process(callCtx, item.UserInput)
	if procErr != nil {
		return c.recordFailure(ctx, taskID, procErr, logger)
	}

	err = c.store.UpdateStatus(ctx, taskID, store.TaskUpdate{
		Status: domain.TaskStatusCompleted,
		Result: result,
	})
	if err != nil {
		logger.Warn("failed to record completion, leaving message for redelivery",
			slog.String("error", err.Error()))
		return queue.Retry
	}

	logger.Info("task completed")
	return queue.Ack
}

// recordFailure persists a terminal failed state with a sanitized error.
// A failed AI call is a final business outcome, so the message is
// acknowledged; redelivering it would only repeat the same failure.
func (c *Consumer) recordFailure(
	ctx context.Context,
	taskID uuid.UUID,
	procErr error,
	logger *slog.Logger,
) queue.Outcome {
	logger.Warn("ai processing failed",
		slog.String("kind", string(processing.KindOf(procErr))))

	err := c.store.UpdateStatus(ctx, taskID, store.TaskUpdate{
		Status: domain.TaskStatusFailed,
		Error:  redact.Error(procErr),
	})
	if err != nil {
		logger.Warn("failed to record failure, leaving message for redelivery",
			slog.String("error", err.Error()))
		return queue.Retry
	}

	return queue.Ack
}
