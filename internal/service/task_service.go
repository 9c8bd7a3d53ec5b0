package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/newslens/internal/domain"
	"github.com/phrazzld/newslens/internal/task"
)

// Dispatcher defines the interface for submitting and inspecting tasks
type Dispatcher interface {
	// Submit records a task and queues it for processing
	Submit(ctx context.Context, req domain.ClassificationRequest) (uuid.UUID, error)

	// Status returns a snapshot of a task record
	Status(ctx context.Context, id uuid.UUID) (*task.Record, error)
}

// TaskService provides the task-related use cases
type TaskService interface {
	// CreateTask validates the request and schedules it, returning the task id
	CreateTask(ctx context.Context, req domain.ClassificationRequest) (uuid.UUID, error)

	// GetStatus returns the current state of a task
	GetStatus(ctx context.Context, id uuid.UUID) (*task.Record, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the dispatcher is nil.
func NewTaskService(dispatcher Dispatcher, logger *slog.Logger) (TaskService, error) {
	if dispatcher == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "dispatcher cannot be nil",
			Err:       ErrNilDependency,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		dispatcher: dispatcher,
		logger:     logger.With("component", "task_service"),
	}, nil
}

// CreateTask normalizes and validates the request, then submits it.
// Validation failures are returned as *domain.ValidationError.
func (s *taskServiceImpl) CreateTask(ctx context.Context, req domain.ClassificationRequest) (uuid.UUID, error) {
	validated, err := domain.NewClassificationRequest(req.Pairs)
	if err != nil {
		s.logger.Debug("rejected invalid classification request", "error", err)
		return uuid.Nil, err
	}

	id, err := s.dispatcher.Submit(ctx, validated)
	if err != nil {
		s.logger.Warn("failed to submit classification task", "error", err)
		return uuid.Nil, NewTaskServiceError("create_task", "failed to submit task", err)
	}

	s.logger.Info("classification task created", "task_id", id, "pair_count", len(validated.Pairs))
	return id, nil
}

// GetStatus retrieves a task record by its id
func (s *taskServiceImpl) GetStatus(ctx context.Context, id uuid.UUID) (*task.Record, error) {
	rec, err := s.dispatcher.Status(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("get_status", "failed to retrieve task", err)
	}
	return rec, nil
}
