package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/blt/internal/app/model"
	"go.uber.org/zap"
)

const (
	taskMaxDeliver  = 5
	fetchRetryDelay = time.Second
)

// TaskConsumerConfig tunes the pull loop.
type TaskConsumerConfig struct {
	FetchBatch int
	FetchWait  time.Duration
}

// TaskConsumer consumes tasks from NATS JetStream.
type TaskConsumer struct {
	js        nats.JetStreamContext
	logger    *zap.Logger
	processor TaskProcessor
	cfg       TaskConsumerConfig
}

// NewTaskConsumer creates a new JetStream task consumer.
func NewTaskConsumer(js nats.JetStreamContext, logger *zap.Logger, processor TaskProcessor, cfg TaskConsumerConfig) *TaskConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FetchBatch <= 0 {
		cfg.FetchBatch = 10
	}
	if cfg.FetchWait <= 0 {
		cfg.FetchWait = 5 * time.Second
	}
	return &TaskConsumer{js: js, logger: logger, processor: processor, cfg: cfg}
}

// EnsureStream creates the task stream if it does not exist yet.
func EnsureStream(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(model.TaskStreamName); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     model.TaskStreamName,
		Subjects: []string{model.TaskStreamSubjects},
		MaxBytes: model.TaskStreamMaxBytes,
		MaxAge:   model.TaskStreamMaxMsgAge,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// Run consumes tasks until ctx is cancelled.
func (c *TaskConsumer) Run(ctx context.Context) error {
	if err := EnsureStream(c.js); err != nil {
		return err
	}

	// Create consumer if not exists
	if _, err := c.js.ConsumerInfo(model.TaskStreamName, model.TaskConsumerName); err != nil {
		_, err = c.js.AddConsumer(model.TaskStreamName, &nats.ConsumerConfig{
			Durable:    model.TaskConsumerName,
			AckPolicy:  nats.AckExplicitPolicy,
			MaxDeliver: taskMaxDeliver,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.TaskStreamSubjects, model.TaskConsumerName, nats.Bind(model.TaskStreamName, model.TaskConsumerName))
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	for {
		if ctx.Err() != nil {
			c.logger.Info("task consumer stopped")
			return nil
		}

		msgs, err := sub.Fetch(c.cfg.FetchBatch, nats.MaxWait(c.cfg.FetchWait))
		if err != nil && !errors.Is(err, nats.ErrTimeout) {
			c.logger.Error("failed to fetch tasks", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		for _, msg := range msgs {
			c.handle(ctx, msg)
		}
	}
}

func (c *TaskConsumer) handle(ctx context.Context, msg *nats.Msg) {
	var task model.Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		c.logger.Error("failed to unmarshal task", zap.Error(err), zap.String("subject", msg.Subject))
		_ = msg.Term()
		return
	}

	if err := c.processor.Process(ctx, task); err != nil {
		c.logger.Error("failed to process task",
			zap.String("kind", string(task.Kind)),
			zap.Error(err),
		)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()
}
