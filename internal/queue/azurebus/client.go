// Package azurebus implements the queue.Client contract on top of an
// Azure Service Bus queue.
package azurebus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/phrazzld/taskpipe/internal/queue"
)

// receiveBatchSize bounds how many messages one ReceiveMessages call may
// return; each message is still handled in its own goroutine.
const receiveBatchSize = 10

// receiveErrorDelay spaces out receive retries when the link is down. The
// SDK reconnects internally; this only avoids a hot loop while it does.
const receiveErrorDelay = 2 * time.Second

// jsonContentType is stamped on every published message.
const jsonContentType = "application/json"

// Config holds the settings for the Service Bus backend.
type Config struct {
	// ConnectionString is the Service Bus namespace connection string.
	ConnectionString string

	// Queue is the queue name work items are published to. Service Bus
	// queues are durable, so delivery survives broker restarts.
	Queue string
}

// Client is the Azure Service Bus implementation of queue.Client.
// Connection recovery is handled inside the Azure SDK; this client only
// spaces out receive retries while a link is being re-established.
type Client struct {
	cfg    Config
	logger *slog.Logger

	client   *azservicebus.Client
	sender   *azservicebus.Sender
	receiver *azservicebus.Receiver

	mu         sync.Mutex
	subscribed bool

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Ensure Client implements queue.Client
var _ queue.Client = (*Client)(nil)

// New connects to the Service Bus namespace and creates a sender for the
// configured queue. The returned client is ready to publish; call
// Subscribe to start consuming.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ConnectionString == "" {
		return nil, errors.New("connection string cannot be empty")
	}
	if cfg.Queue == "" {
		return nil, errors.New("queue name cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sbClient, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := sbClient.NewSender(cfg.Queue, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus sender: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "azurebus_client")),
		client: sbClient,
		sender: sender,
		ctx:    ctx,
		cancel: cancel,
	}

	c.logger.Info("connected to Azure Service Bus", slog.String("queue", cfg.Queue))
	return c, nil
}

// Publish implements queue.Publisher.Publish
// SendMessage returns only after the broker has accepted the message into
// the durable queue, so success means the item will survive a restart.
func (c *Client) Publish(ctx context.Context, item queue.WorkItem) error {
	if c.isClosed() {
		return queue.ErrClosed
	}

	body, err := item.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPublishFailed, err)
	}

	contentType := jsonContentType
	messageID := item.TaskID
	msg := &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		MessageID:   &messageID,
	}

	if err := c.sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPublishFailed, err)
	}

	c.logger.Debug("work item published",
		slog.String("task_id", item.TaskID),
		slog.String("queue", c.cfg.Queue))

	return nil
}

// Subscribe implements queue.Subscriber.Subscribe
func (c *Client) Subscribe(ctx context.Context, handler queue.Handler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	if c.isClosed() {
		return queue.ErrClosed
	}

	c.mu.Lock()
	if c.subscribed {
		c.mu.Unlock()
		return errors.New("client is already subscribed")
	}
	c.subscribed = true
	c.mu.Unlock()

	receiver, err := c.client.NewReceiverForQueue(c.cfg.Queue, nil)
	if err != nil {
		return fmt.Errorf("failed to create Service Bus receiver: %w", err)
	}
	c.receiver = receiver

	c.wg.Add(1)
	go c.receiveLoop(handler)

	c.logger.Info("started consuming", slog.String("queue", c.cfg.Queue))
	return nil
}

// receiveLoop pulls message batches until the client closes and hands
// each message to its own handler goroutine.
func (c *Client) receiveLoop(handler queue.Handler) {
	defer c.wg.Done()

	for {
		messages, err := c.receiver.ReceiveMessages(c.ctx, receiveBatchSize, nil)
		if err != nil {
			if c.isClosed() {
				return
			}
			c.logger.Warn("failed to receive messages, retrying",
				slog.String("error", err.Error()))
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(receiveErrorDelay):
			}
			continue
		}

		for _, msg := range messages {
			msg := msg
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.dispatch(msg, handler)
			}()
		}
	}
}

// dispatch decodes one message, invokes the handler, and settles the
// message according to the outcome.
func (c *Client) dispatch(msg *azservicebus.ReceivedMessage, handler queue.Handler) {
	item, err := queue.DecodeWorkItem(msg.Body)
	if err != nil {
		c.logger.Error("dead-lettering malformed message",
			slog.String("error", err.Error()))
		c.settle(msg, queue.Reject, "")
		return
	}

	outcome := handler(context.Background(), item)
	c.settle(msg, outcome, item.TaskID)
}

// settle maps an outcome onto Service Bus settlement semantics. Retry
// abandons the message, returning it to the queue under the broker's own
// delivery-count policy; Reject moves it to the dead-letter subqueue.
func (c *Client) settle(msg *azservicebus.ReceivedMessage, outcome queue.Outcome, taskID string) {
	// Settlement must not inherit a handler deadline; give it its own.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch outcome {
	case queue.Ack:
		err = c.receiver.CompleteMessage(ctx, msg, nil)
	case queue.Reject:
		err = c.receiver.DeadLetterMessage(ctx, msg, nil)
	case queue.Retry:
		err = c.receiver.AbandonMessage(ctx, msg, nil)
	}

	if err != nil {
		c.logger.Error("failed to settle message",
			slog.String("task_id", taskID),
			slog.String("outcome", outcome.String()),
			slog.String("error", err.Error()))
	}
}

// Close implements queue.Client.Close
// It stops the receive loop, waits for in-flight handlers up to the ctx
// deadline, then closes the sender, receiver and namespace client.
// Unsettled messages reappear after their lock expires.
func (c *Client) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.cancel()
	})

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("shutdown deadline reached with handlers in flight")
	}

	var errs []error
	if c.receiver != nil {
		if err := c.receiver.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close receiver: %w", err))
		}
	}
	if err := c.sender.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close sender: %w", err))
	}
	if err := c.client.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close client: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.logger.Info("Service Bus connection closed")
	return nil
}

// isClosed reports whether Close has been initiated.
func (c *Client) isClosed() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}
