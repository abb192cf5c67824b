package workers

import (
	"context"
	"sync"
	"time"

	"github.com/haydenflinner/magicinvoke/logger"
	"github.com/haydenflinner/magicinvoke/tasks/coordinator"
)

// Pool manages a collection of workers and their lifecycle.
type Pool struct {
	workers         []*Worker
	requests        chan Request
	results         chan Result
	logger          *logger.Logger
	wg              sync.WaitGroup
	cancelFn        context.CancelFunc
	shutdownTimeout time.Duration
	mu              sync.RWMutex // protects cancelFn and state
}

// NewPool creates a pool of workerCount workers sharing one request queue.
func NewPool(workerCount int, coord *coordinator.Coordinator, lg *logger.Logger) *Pool {
	requests := make(chan Request, workerCount)
	results := make(chan Result, workerCount)

	workers := make([]*Worker, workerCount)
	for i := 0; i < workerCount; i++ {
		workers[i] = NewWorker(i+1, requests, results, coord, lg)
	}

	return &Pool{
		workers:         workers,
		requests:        requests,
		results:         results,
		logger:          lg,
		shutdownTimeout: 30 * time.Second,
	}
}

// Start begins all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancelFn = cancel

	p.logger.Info("starting worker pool", map[string]any{
		"worker_count": len(p.workers),
	})

	for _, worker := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(workerCtx)
		}(worker)
	}
}

// Submit queues one invocation request. It blocks while the queue is full and
// fails once the context is cancelled.
func (p *Pool) Submit(ctx context.Context, req Request) error {
	select {
	case p.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results exposes completed invocations in completion order.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Stop gracefully shuts down all workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	cancelFn := p.cancelFn
	p.mu.Unlock()

	p.logger.Info("stopping worker pool", map[string]any{
		"worker_count": len(p.workers),
		"timeout":      p.shutdownTimeout.String(),
	})

	if cancelFn != nil {
		cancelFn()
	}

	for _, worker := range p.workers {
		worker.Stop()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
	case <-time.After(p.shutdownTimeout):
		p.logger.Warn("worker pool shutdown timed out", map[string]any{
			"timeout": p.shutdownTimeout.String(),
		})
	}

	p.mu.Lock()
	p.cancelFn = nil
	p.mu.Unlock()
}

// WorkerCount returns the number of workers in the pool.
func (p *Pool) WorkerCount() int {
	return len(p.workers)
}

// SetShutdownTimeout configures how long Stop waits for graceful shutdown.
func (p *Pool) SetShutdownTimeout(timeout time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdownTimeout = timeout
}
