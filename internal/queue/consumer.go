package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/ingestion"
	"github.com/audit-lab/audit-service/internal/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// maxMessages is the largest batch SQS returns from one receive.
const maxMessages = 10

// ProcessingError reports a message that could not be stored. The message
// stays on the queue and becomes visible again after its visibility timeout.
type ProcessingError struct {
	MessageID string
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("message %s: %v", e.MessageID, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

type ConsumerOptions struct {
	QueueURL        string
	PullFrequency   time.Duration
	WaitTimeSeconds int32
	WriteTimeout    time.Duration
}

// Consumer pulls audit records from an SQS queue and writes them
// synchronously. A message is deleted only once its record is stored.
type Consumer struct {
	client Client
	store  storage.LogStore
	opts   ConsumerOptions
	now    func() time.Time
}

func NewConsumer(client Client, store storage.LogStore, opts ConsumerOptions) *Consumer {
	if client == nil {
		panic("queue: client must not be nil")
	}
	if store == nil {
		panic("queue: store must not be nil")
	}
	if opts.PullFrequency <= 0 {
		opts.PullFrequency = 300 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Consumer{
		client: client,
		store:  store,
		opts:   opts,
		now:    time.Now,
	}
}

// Run pulls until ctx is cancelled, sleeping PullFrequency whenever the
// queue was empty or a message failed.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("[Consumer] Starting to pull from queue",
		"queue_url", c.opts.QueueURL,
		"pull_frequency", c.opts.PullFrequency)

	for {
		if ctx.Err() != nil {
			slog.Info("[Consumer] Stopped")
			return nil
		}

		if !c.PullOnce(ctx) {
			continue
		}

		slog.Debug("[Consumer] Sleeping", "duration", c.opts.PullFrequency)
		select {
		case <-ctx.Done():
			slog.Info("[Consumer] Stopped")
			return nil
		case <-time.After(c.opts.PullFrequency):
		}
	}
}

// PullOnce receives one batch and processes it message by message. It
// reports whether the caller should sleep before the next pull.
func (c *Consumer) PullOnce(ctx context.Context) bool {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.opts.QueueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     c.opts.WaitTimeSeconds,
	})
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("[Consumer] Error pulling from queue", "error", err)
		}
		return true
	}

	failed := false
	for _, msg := range out.Messages {
		if err := c.process(ctx, msg); err != nil {
			failed = true
			telemetry.QueueMessagesTotal.WithLabelValues("failed").Inc()
			slog.Error("[Consumer] Error processing audit log", "error", err)
			continue
		}
		telemetry.QueueMessagesTotal.WithLabelValues("processed").Inc()
	}

	return len(out.Messages) == 0 || failed
}

type envelope struct {
	Category string `json:"category"`
}

func (c *Consumer) process(ctx context.Context, msg types.Message) error {
	id := aws.ToString(msg.MessageId)
	body := []byte(aws.ToString(msg.Body))

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ProcessingError{MessageID: id, Err: fmt.Errorf("%w: %w", ingestion.ErrInvalidJSON, err)}
	}
	if env.Category == "" {
		return &ProcessingError{MessageID: id, Err: errors.New("message has no category")}
	}
	cat, err := v1.ParseCategory(env.Category)
	if err != nil {
		return &ProcessingError{MessageID: id, Err: err}
	}

	rec, err := ingestion.DecodeRecord(cat, body, c.now())
	if err != nil {
		return &ProcessingError{MessageID: id, Err: err}
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()

	if _, err := c.store.Insert(writeCtx, rec); err != nil {
		telemetry.RecordWriteFailures.WithLabelValues(string(cat), telemetry.SourceQueue).Inc()
		return &ProcessingError{MessageID: id, Err: err}
	}
	telemetry.RecordsWritten.WithLabelValues(string(cat), telemetry.SourceQueue).Inc()

	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.opts.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		return &ProcessingError{MessageID: id, Err: fmt.Errorf("failed to delete message: %w", err)}
	}

	slog.Debug("[Consumer] Record stored",
		"message_id", id,
		"category", cat,
		"id", rec.Base().ID)
	return nil
}
