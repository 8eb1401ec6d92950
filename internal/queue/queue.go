package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Common queue errors shared by all backends.
var (
	// ErrPublishFailed is returned when a message could not be durably
	// persisted to the queue. Callers must treat this as a failure of the
	// whole submission, not as a fire-and-forget miss.
	ErrPublishFailed = errors.New("failed to publish work item")

	// ErrClosed is returned when an operation is attempted on a client
	// that has been shut down.
	ErrClosed = errors.New("queue client is closed")

	// ErrMalformedMessage is returned when a delivered payload cannot be
	// decoded into a WorkItem.
	ErrMalformedMessage = errors.New("malformed work item message")
)

// WorkItem is the wire representation of a task enqueued for processing.
// TaskID is the sole correlation key back to the stored task; UserInput is
// a redundant copy so the consumer has work to show without dereferencing
// the store first.
type WorkItem struct {
	TaskID    string `json:"taskId"`
	UserInput string `json:"userInput"`
}

// Encode serializes the work item to its JSON wire form.
func (w WorkItem) Encode() ([]byte, error) {
	body, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode work item: %w", err)
	}
	return body, nil
}

// DecodeWorkItem parses the JSON wire form of a work item. A payload that
// does not decode, or that carries no task id, is reported as
// ErrMalformedMessage so consumers can dead-letter it.
func DecodeWorkItem(body []byte) (WorkItem, error) {
	var item WorkItem
	if err := json.Unmarshal(body, &item); err != nil {
		return WorkItem{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if item.TaskID == "" {
		return WorkItem{}, fmt.Errorf("%w: missing task id", ErrMalformedMessage)
	}
	return item, nil
}

// Outcome is the handler's disposition for a delivered message.
type Outcome int

const (
	// Ack removes the message from the queue permanently. Used for every
	// terminal business outcome, including a failed AI call.
	Ack Outcome = iota

	// Reject removes the message from the active queue without requeueing,
	// routing it to the backend's dead-letter path. Used when the failure
	// is not transient (malformed message, unknown task).
	Reject

	// Retry leaves the delivery open so the broker's own redelivery
	// policy applies. Used for transport faults such as an unavailable
	// store.
	Retry
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Reject:
		return "reject"
	case Retry:
		return "retry"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Handler processes one delivered work item and reports its disposition.
// Handlers may be invoked concurrently; no ordering across distinct tasks
// is guaranteed.
type Handler func(ctx context.Context, item WorkItem) Outcome

// Publisher sends work items to the durable queue.
type Publisher interface {
	// Publish persists the work item to the named durable queue before
	// returning success. A returned error means the item was not enqueued;
	// it is never silently dropped.
	Publish(ctx context.Context, item WorkItem) error
}

// Subscriber delivers work items to a handler.
type Subscriber interface {
	// Subscribe registers the handler and starts delivering messages to
	// it until the client is closed. At-least-once delivery: a message is
	// redelivered if the handler does not acknowledge it.
	Subscribe(ctx context.Context, handler Handler) error
}

// Client is the full broker capability set consumed by the pipeline.
// Both backends implement it; the pipeline never depends on which one
// is configured.
type Client interface {
	Publisher
	Subscriber

	// Close drains the client gracefully: it stops accepting new
	// deliveries and lets in-flight handler invocations finish or be
	// abandoned for redelivery.
	Close(ctx context.Context) error
}
