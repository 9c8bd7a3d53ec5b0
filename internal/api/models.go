package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/newslens/internal/domain"
	"github.com/phrazzld/newslens/internal/task"
)

// CategoryPairRequest is one pair of labels in a task submission.
type CategoryPairRequest struct {
	Class1 string `json:"class1" validate:"required,max=50"`
	Class2 string `json:"class2" validate:"required,max=50"`
}

// CreateTaskRequest defines the payload for POST /api/tasks.
type CreateTaskRequest struct {
	Pairs []CategoryPairRequest `json:"pairs" validate:"required,min=1,dive"`
}

// ToDomain converts the payload into a classification request. The result
// is not yet normalized; the service does that.
func (r CreateTaskRequest) ToDomain() domain.ClassificationRequest {
	pairs := make([]domain.CategoryPair, len(r.Pairs))
	for i, p := range r.Pairs {
		pairs[i] = domain.CategoryPair{Class1: p.Class1, Class2: p.Class2}
	}
	return domain.ClassificationRequest{Pairs: pairs}
}

// CreateTaskResponse is returned when a task is accepted.
type CreateTaskResponse struct {
	TaskID uuid.UUID `json:"task_id"`
}

// TaskResponse is the polled view of a task.
type TaskResponse struct {
	TaskID    uuid.UUID          `json:"task_id"`
	Status    task.Status        `json:"status"`
	Result    *domain.TaskResult `json:"result"`
	Error     *string            `json:"error"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func taskToResponse(rec *task.Record) TaskResponse {
	return TaskResponse{
		TaskID:    rec.ID,
		Status:    rec.Status,
		Result:    rec.Result,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Tasks      map[string]int    `json:"tasks"`
	QueueDepth int               `json:"queue_depth"`
	Components map[string]string `json:"components,omitempty"`
}
