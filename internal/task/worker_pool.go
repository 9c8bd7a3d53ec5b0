package task

import (
	"context"
	"log/slog"
	"sync"
)

// JobHandler processes one job on behalf of a worker.
type JobHandler func(ctx context.Context, job Job, workerID int)

// WorkerPool manages a pool of worker goroutines that process jobs
// from a queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// queue provides read access to the jobs to be processed
	queue JobQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	// logger for structured logging
	logger *slog.Logger

	startOnce sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(queue JobQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	// Apply defaults for invalid config values
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	// Create a cancelable context for shutdown coordination
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// WorkerCount returns the number of workers the pool runs.
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// Start launches the workers. Subsequent calls are no-ops.
func (p *WorkerPool) Start(handler JobHandler) {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i, handler)
		}
	})
}

// Wait blocks until every worker has exited. Workers exit once the queue
// channel is closed and drained, or when Stop is called.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Stop cancels the pool context and waits for workers to exit. Jobs still
// buffered in the queue are not picked up.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Context returns the pool context, cancelled by Stop.
func (p *WorkerPool) Context() context.Context {
	return p.ctx
}

func (p *WorkerPool) worker(id int, handler JobHandler) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	jobs := p.queue.GetChannel()
	for {
		// Prefer shutdown over picking up more work.
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		default:
		}

		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case job, ok := <-jobs:
			if !ok {
				p.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}
			p.handle(handler, job, id)
		}
	}
}

// handle runs one job and keeps the worker alive if the handler panics.
func (p *WorkerPool) handle(handler JobHandler, job Job, id int) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("recovered from panic in job handler",
				"worker_id", id, "task_id", job.TaskID, "panic", r)
		}
	}()
	handler(p.ctx, job, id)
}
