package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types.
const (
	TypeTaskSubmitted  = "task.submitted"
	TypeTaskRejected   = "task.rejected"
	TypeTaskProcessing = "task.processing"
	TypeTaskCompleted  = "task.completed"
	TypeTaskFailed     = "task.failed"
)

// TaskEvent describes one lifecycle transition of a task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// TaskID identifies the task that changed state
	TaskID uuid.UUID `json:"task_id"`

	// Reason is a short machine-readable failure class for failed tasks
	Reason string `json:"reason,omitempty"`

	// Error carries the task error message for failed tasks
	Error string `json:"error,omitempty"`

	// Duration is how long the task was processing, for terminal events
	Duration time.Duration `json:"duration,omitempty"`

	// QueueWait is how long the task waited before a worker picked it up
	QueueWait time.Duration `json:"queue_wait,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskEvent creates a TaskEvent of the given type for taskID.
func NewTaskEvent(eventType string, taskID uuid.UUID) *TaskEvent {
	return &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		TaskID:    taskID,
		CreatedAt: time.Now().UTC(),
	}
}

// IsTerminal reports whether the event marks the end of a task.
func (e *TaskEvent) IsTerminal() bool {
	return e.Type == TypeTaskCompleted || e.Type == TypeTaskFailed
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}
