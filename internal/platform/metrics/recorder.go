package metrics

import (
	"context"

	"github.com/phrazzld/newslens/internal/events"
)

// Recorder translates task lifecycle events into metric updates.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// HandleEvent implements events.EventHandler.
func (r *Recorder) HandleEvent(_ context.Context, event *events.TaskEvent) error {
	switch event.Type {
	case events.TypeTaskSubmitted:
		TasksSubmitted.Inc()
	case events.TypeTaskRejected:
		TasksRejected.WithLabelValues(event.Reason).Inc()
	case events.TypeTaskProcessing:
		TasksActive.Inc()
		TaskQueueWait.Observe(event.QueueWait.Seconds())
	case events.TypeTaskCompleted:
		TasksActive.Dec()
		TasksCompleted.Inc()
		TaskDuration.WithLabelValues("complete").Observe(event.Duration.Seconds())
	case events.TypeTaskFailed:
		TasksActive.Dec()
		TasksFailed.WithLabelValues(event.Reason).Inc()
		TaskDuration.WithLabelValues("failed").Observe(event.Duration.Seconds())
	}
	return nil
}
