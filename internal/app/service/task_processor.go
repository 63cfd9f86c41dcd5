package service

import (
	"context"
	"fmt"

	"github.com/sifan077/blt/internal/app/model"
	infraPrometheus "github.com/sifan077/blt/internal/infra/prometheus"
)

// TaskProcessor executes one background task.
type TaskProcessor interface {
	Process(ctx context.Context, task model.Task) error
}

// TaskRouter dispatches tasks to the event recorder or the audit trace.
type TaskRouter struct {
	recorder *EventRecorder
	auditor  *AuditTrace
}

// NewTaskRouter creates a TaskProcessor over the given workers.
func NewTaskRouter(recorder *EventRecorder, auditor *AuditTrace) *TaskRouter {
	return &TaskRouter{recorder: recorder, auditor: auditor}
}

func (r *TaskRouter) Process(ctx context.Context, task model.Task) error {
	switch task.Kind {
	case model.TaskKindEvent:
		if task.Event == nil {
			infraPrometheus.TasksTotal.WithLabelValues(string(task.Kind), "invalid").Inc()
			return fmt.Errorf("event task without payload")
		}
		if err := r.recorder.Record(ctx, *task.Event); err != nil {
			infraPrometheus.TasksTotal.WithLabelValues(string(task.Kind), "failed").Inc()
			return err
		}
	case model.TaskKindAudit:
		if task.Audit == nil {
			infraPrometheus.TasksTotal.WithLabelValues(string(task.Kind), "invalid").Inc()
			return fmt.Errorf("audit task without payload")
		}
		r.auditor.Push(ctx, task.Audit.Marker, task.Audit.Trace)
	default:
		infraPrometheus.TasksTotal.WithLabelValues("unknown", "invalid").Inc()
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}

	infraPrometheus.TasksTotal.WithLabelValues(string(task.Kind), "done").Inc()
	return nil
}
