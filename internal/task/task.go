package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/newslens/internal/domain"
)

// Status represents the current state of a task
type Status string

// Possible task status values
const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusComplete   Status = "Complete"
	StatusFailed     Status = "Failed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusComplete, StatusFailed}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Common errors returned by the task package
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTerminalState     = errors.New("task is already in a terminal state")
	ErrInvalidTransition = errors.New("invalid task status transition")
	ErrQueueClosed       = errors.New("task queue is closed")
	ErrQueueFull         = errors.New("task queue is full")
	ErrNilDependency     = errors.New("required dependency is nil")
)

// Record is the externally visible state of one classification task.
type Record struct {
	ID        uuid.UUID                    `json:"task_id"`
	Status    Status                       `json:"status"`
	Request   domain.ClassificationRequest `json:"request"`
	Result    *domain.TaskResult           `json:"result"`
	Error     *string                      `json:"error"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

func (r *Record) clone() *Record {
	c := *r
	c.Request = r.Request.Clone()
	c.Result = r.Result.Clone()
	if r.Error != nil {
		msg := *r.Error
		c.Error = &msg
	}
	return &c
}

// Outcome is the terminal result of processing a task: either a result or
// an error message, never both.
type Outcome struct {
	result *domain.TaskResult
	errMsg string
	failed bool
}

// Succeeded builds a Complete outcome.
func Succeeded(result *domain.TaskResult) Outcome {
	return Outcome{result: result}
}

// Failed builds a Failed outcome with the message reported to callers.
func Failed(message string) Outcome {
	return Outcome{errMsg: message, failed: true}
}

// Status returns the terminal status this outcome commits.
func (o Outcome) Status() Status {
	if o.failed {
		return StatusFailed
	}
	return StatusComplete
}

// Store persists task records.
type Store interface {
	// Create inserts a new Pending record with a fresh id.
	Create(ctx context.Context, req domain.ClassificationRequest) (*Record, error)

	// Get returns a snapshot of the record or ErrTaskNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)

	// MarkProcessing moves a Pending record to Processing.
	MarkProcessing(ctx context.Context, id uuid.UUID) error

	// Commit moves a non-terminal record to the outcome's terminal status.
	Commit(ctx context.Context, id uuid.UUID, outcome Outcome) error

	// Remove deletes a record that was never handed out.
	Remove(ctx context.Context, id uuid.UUID) error

	// Counts returns the number of records per status.
	Counts(ctx context.Context) (map[Status]int, error)
}

// Processor turns a validated request into a result.
type Processor interface {
	Process(ctx context.Context, req domain.ClassificationRequest) (*domain.TaskResult, error)
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(ctx context.Context, req domain.ClassificationRequest) (*domain.TaskResult, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, req domain.ClassificationRequest) (*domain.TaskResult, error) {
	return f(ctx, req)
}

// Job is a unit of queued work.
type Job struct {
	TaskID     uuid.UUID
	Request    domain.ClassificationRequest
	EnqueuedAt time.Time
}

// JobQueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type JobQueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// JobQueueWriter provides write access to the job queue
// allowing the dispatcher to enqueue jobs for processing
type JobQueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error

	// Close closes the queue, preventing further submission
	Close()
}
