package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/blt/internal/app/model"
)

const defaultPublishTimeout = 2 * time.Second

// TaskPublisher publishes tasks to NATS JetStream.
type TaskPublisher struct {
	js      nats.JetStreamContext
	timeout time.Duration
}

// NewTaskPublisher creates a new JetStream task publisher. Each publish waits
// at most timeout for the stream's ack; zero selects the default.
func NewTaskPublisher(js nats.JetStreamContext, timeout time.Duration) *TaskPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &TaskPublisher{js: js, timeout: timeout}
}

// Enqueue publishes the task on its kind's subject. The caller's deadline is
// kept when it is shorter than the publish timeout.
func (p *TaskPublisher) Enqueue(ctx context.Context, task model.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.js.Publish(task.Kind.Subject(), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish task: %w", err)
	}
	return nil
}
