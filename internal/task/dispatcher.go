package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/newslens/internal/domain"
	"github.com/phrazzld/newslens/internal/events"
)

// UnexpectedErrorMessage is stored when a processor returns neither a
// result nor an error.
const UnexpectedErrorMessage = "Unexpected error"

// shutdownMessage is stored on tasks interrupted by a forced Stop.
const shutdownMessage = "task cancelled during shutdown"

// Failure reasons attached to task.failed and task.rejected events.
const (
	ReasonEmptyInput   = "empty_input"
	ReasonTimeout      = "timeout"
	ReasonCollaborator = "collaborator"
	ReasonPanic        = "panic"
	ReasonShutdown     = "shutdown"
	ReasonInternal     = "internal"
	ReasonQueueFull    = "queue_full"
	ReasonQueueClosed  = "queue_closed"
)

// PanicError carries a value recovered from a panicking processor.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	// WorkerCount determines how many tasks are processed concurrently
	WorkerCount int

	// QueueSize bounds the number of accepted tasks waiting for a worker
	QueueSize int

	// TaskTimeout is the processing deadline per task. Zero disables it.
	// A timed-out task is failed at once, but its worker stays busy until
	// the processor returns, so at most WorkerCount processors ever run.
	TaskTimeout time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount: DefaultWorkerPoolConfig().WorkerCount,
		QueueSize:   100,
		TaskTimeout: 5 * time.Minute,
	}
}

// Dispatcher accepts classification requests, records them in the Store and
// runs them on a shared worker pool.
type Dispatcher struct {
	store     Store
	processor Processor
	emitter   events.EventEmitter
	queue     *TaskQueue
	pool      *WorkerPool
	config    DispatcherConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil emitter discards events.
func NewDispatcher(
	store Store,
	processor Processor,
	emitter events.EventEmitter,
	config DispatcherConfig,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store", ErrNilDependency)
	}
	if processor == nil {
		return nil, fmt.Errorf("%w: processor", ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", ErrNilDependency)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if config.TaskTimeout < 0 {
		config.TaskTimeout = 0
	}

	logger = logger.With("component", "task_dispatcher")
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	return &Dispatcher{
		store:     store,
		processor: processor,
		emitter:   emitter,
		queue:     queue,
		pool:      pool,
		config:    config,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Submit records a new Pending task and queues it for processing.
// It returns as soon as the task is queued. When the queue is full the
// record is discarded and an error wrapping ErrQueueFull is returned.
func (d *Dispatcher) Submit(ctx context.Context, req domain.ClassificationRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	rec, err := d.store.Create(ctx, req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create task: %w", err)
	}

	job := Job{TaskID: rec.ID, Request: rec.Request, EnqueuedAt: d.now()}
	if err := d.queue.Enqueue(job); err != nil {
		if rmErr := d.store.Remove(ctx, rec.ID); rmErr != nil {
			d.logger.Error("failed to remove rejected task", "task_id", rec.ID, "error", rmErr)
		}

		reason := ReasonQueueFull
		if errors.Is(err, ErrQueueClosed) {
			reason = ReasonQueueClosed
		}
		d.emit(ctx, events.TypeTaskRejected, rec.ID, func(e *events.TaskEvent) {
			e.Reason = reason
		})
		d.logger.Warn("task rejected", "task_id", rec.ID, "reason", reason)
		return uuid.Nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	d.emit(ctx, events.TypeTaskSubmitted, rec.ID, nil)
	d.logger.Debug("task submitted", "task_id", rec.ID, "pair_count", len(req.Pairs))
	return rec.ID, nil
}

// Status returns a snapshot of the task record.
func (d *Dispatcher) Status(ctx context.Context, id uuid.UUID) (*Record, error) {
	return d.store.Get(ctx, id)
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	d.pool.Start(d.runJob)
}

// Stop closes the queue and waits for queued and in-flight tasks to commit.
// If ctx expires first, in-flight tasks are cancelled and committed as
// Failed, and ctx's error is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.queue.Close()

	done := make(chan struct{})
	go func() {
		d.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("dispatcher stop deadline reached, cancelling in-flight tasks",
			"queued", d.queue.Len())
		d.pool.Stop()
		return ctx.Err()
	}
}

// QueueDepth returns the number of tasks waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	return d.queue.Len()
}

// runJob executes one job on a worker goroutine and commits its outcome.
// The worker is held until the processor goroutine returns, even after a
// timeout has already failed the task, unless the pool is being stopped.
func (d *Dispatcher) runJob(ctx context.Context, job Job, workerID int) {
	logger := d.logger.With("task_id", job.TaskID, "worker_id", workerID)
	commitCtx := context.WithoutCancel(ctx)
	committed := false

	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered from panic while running task", "panic", r)
			if !committed {
				d.failAfterPanic(commitCtx, logger, job.TaskID, r)
			}
		}
	}()

	if err := d.store.MarkProcessing(ctx, job.TaskID); err != nil {
		logger.Error("failed to mark task as processing", "error", err)
		return
	}

	startedAt := d.now()
	d.emit(ctx, events.TypeTaskProcessing, job.TaskID, func(e *events.TaskEvent) {
		e.QueueWait = startedAt.Sub(job.EnqueuedAt)
	})
	logger.Info("processing task")

	result, finished, err := d.execute(ctx, job)
	defer awaitProcessor(ctx, finished)
	duration := d.now().Sub(startedAt)

	if err == nil && result == nil {
		err = errors.New(UnexpectedErrorMessage)
	}

	if err != nil {
		reason := failureReason(err)
		msg := failureMessage(err)
		commitErr := d.store.Commit(commitCtx, job.TaskID, Failed(msg))
		committed = true
		if commitErr != nil {
			logger.Error("failed to commit failed task", "error", commitErr)
			return
		}
		d.emit(commitCtx, events.TypeTaskFailed, job.TaskID, func(e *events.TaskEvent) {
			e.Reason = reason
			e.Error = msg
			e.Duration = duration
		})
		logger.Error("task failed", "reason", reason, "error", err, "duration", duration)
		return
	}

	commitErr := d.store.Commit(commitCtx, job.TaskID, Succeeded(result))
	committed = true
	if commitErr != nil {
		logger.Error("failed to commit completed task", "error", commitErr)
		return
	}
	d.emit(commitCtx, events.TypeTaskCompleted, job.TaskID, func(e *events.TaskEvent) {
		e.Duration = duration
	})
	logger.Info("task completed", "item_count", len(result.Items), "duration", duration)
}

// failAfterPanic commits a task as Failed after a panic outside the
// processor. A second panic here is left to the worker pool.
func (d *Dispatcher) failAfterPanic(ctx context.Context, logger *slog.Logger, id uuid.UUID, value any) {
	msg := fmt.Sprint(value)
	if err := d.store.Commit(ctx, id, Failed(msg)); err != nil {
		logger.Error("failed to commit task after panic", "error", err)
		return
	}
	d.emit(ctx, events.TypeTaskFailed, id, func(e *events.TaskEvent) {
		e.Reason = ReasonPanic
		e.Error = msg
	})
}

// awaitProcessor blocks until finished is closed or the pool is stopped.
func awaitProcessor(poolCtx context.Context, finished <-chan struct{}) {
	select {
	case <-finished:
	case <-poolCtx.Done():
	}
}

type processResult struct {
	result *domain.TaskResult
	err    error
}

// execute runs the processor under the task deadline. A panic in the
// processor is recovered and returned as a PanicError. The returned channel
// is closed once the processor goroutine has exited.
func (d *Dispatcher) execute(ctx context.Context, job Job) (*domain.TaskResult, <-chan struct{}, error) {
	var cancel context.CancelFunc
	if d.config.TaskTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.config.TaskTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan processResult, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("recovered from panic in task processor",
					"task_id", job.TaskID, "panic", r)
				done <- processResult{err: &PanicError{Value: r}}
			}
		}()
		res, err := d.processor.Process(ctx, job.Request.Clone())
		done <- processResult{result: res, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, finished, &domain.TimeoutError{After: d.config.TaskTimeout}
		}
		return r.result, finished, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, finished, &domain.TimeoutError{After: d.config.TaskTimeout}
		}
		return nil, finished, ctx.Err()
	}
}

func (d *Dispatcher) emit(ctx context.Context, eventType string, taskID uuid.UUID, decorate func(*events.TaskEvent)) {
	event := events.NewTaskEvent(eventType, taskID)
	if decorate != nil {
		decorate(event)
	}
	if err := d.emitter.EmitEvent(ctx, event); err != nil {
		d.logger.Warn("failed to emit task event", "event_type", eventType, "task_id", taskID, "error", err)
	}
}

func failureMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return shutdownMessage
	}
	return domain.FailureMessage(err)
}

func failureReason(err error) string {
	var timeoutErr *domain.TimeoutError
	var panicErr *PanicError
	var collabErr *domain.CollaboratorError
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return ReasonEmptyInput
	case errors.As(err, &timeoutErr):
		return ReasonTimeout
	case errors.As(err, &panicErr):
		return ReasonPanic
	case errors.As(err, &collabErr):
		return ReasonCollaborator
	case errors.Is(err, context.Canceled):
		return ReasonShutdown
	default:
		return ReasonInternal
	}
}
