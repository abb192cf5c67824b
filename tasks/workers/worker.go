// Package workers drives many independent memoized invocations concurrently
// through the coordinator. The result store's last-writer-wins contract
// covers racing writers, so no coordination beyond the queue is needed.
package workers

import (
	"context"
	"sync"

	"github.com/haydenflinner/magicinvoke/logger"
	"github.com/haydenflinner/magicinvoke/tasks"
	"github.com/haydenflinner/magicinvoke/tasks/coordinator"
	"github.com/haydenflinner/magicinvoke/tasks/params"
)

// Request describes one invocation to perform.
type Request struct {
	Task     *tasks.Task
	Layers   []params.Layer
	Explicit params.Values
	Options  coordinator.Options
}

// Result pairs a request with what came of it.
type Result struct {
	Request Request
	Outcome *coordinator.Outcome
	Err     error
}

type Worker struct {
	id       int
	requests <-chan Request
	results  chan<- Result
	coord    *coordinator.Coordinator
	logger   *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewWorker(id int, requests <-chan Request, results chan<- Result, coord *coordinator.Coordinator, lg *logger.Logger) *Worker {
	return &Worker{
		id:       id,
		requests: requests,
		results:  results,
		coord:    coord,
		logger:   lg,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the worker's processing loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Debug("worker starting", map[string]any{
		"worker_id": w.id,
	})

	defer w.logger.Debug("worker stopped", map[string]any{
		"worker_id": w.id,
	})

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case req, ok := <-w.requests:
			if !ok {
				return
			}
			w.process(ctx, req)
		}
	}
}

// Stop signals the worker to stop gracefully.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *Worker) process(ctx context.Context, req Request) {
	outcome, err := w.coord.Invoke(ctx, req.Task, req.Layers, req.Explicit, req.Options)
	if err != nil {
		w.logger.Task(req.Task.Name, "invocation failed", map[string]any{
			"worker_id": w.id,
			"error":     err.Error(),
		})
	}

	select {
	case w.results <- Result{Request: req, Outcome: outcome, Err: err}:
	case <-ctx.Done():
	}
}
