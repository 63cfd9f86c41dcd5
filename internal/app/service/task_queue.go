package service

import (
	"context"
	"sync"

	"github.com/sifan077/blt/internal/app/model"
	"go.uber.org/zap"
)

// TaskQueue hands deferred work to a background worker. Delivery is
// at-least-once with no ordering guarantee between tasks.
type TaskQueue interface {
	Enqueue(ctx context.Context, task model.Task) error
}

// LocalTaskQueue runs tasks on a bounded in-process worker pool. Enqueue never
// blocks: a full buffer rejects the task.
type LocalTaskQueue struct {
	logger    *zap.Logger
	processor TaskProcessor
	tasks     chan model.Task

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewLocalTaskQueue starts workers goroutines draining a buffer of the given size.
func NewLocalTaskQueue(logger *zap.Logger, processor TaskProcessor, workers, buffer int) *LocalTaskQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}

	q := &LocalTaskQueue{
		logger:    logger,
		processor: processor,
		tasks:     make(chan model.Task, buffer),
	}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.work()
	}
	return q
}

func (q *LocalTaskQueue) Enqueue(_ context.Context, task model.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting tasks and waits until queued tasks are processed.
func (q *LocalTaskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *LocalTaskQueue) work() {
	defer q.wg.Done()

	ctx := context.Background()
	for task := range q.tasks {
		if err := q.processor.Process(ctx, task); err != nil {
			q.logger.Error("background task failed",
				zap.String("kind", string(task.Kind)),
				zap.Error(err),
			)
		}
	}
}
