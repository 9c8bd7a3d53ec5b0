package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/newslens/internal/api/shared"
	"github.com/phrazzld/newslens/internal/platform/logger"
	"github.com/phrazzld/newslens/internal/service"
)

// TaskHandler handles task submission and polling.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With("component", "task_handler"),
	}
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Debug("failed to decode task request", "error", err)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		if fields := shared.ValidationFields(err); fields != nil {
			shared.RespondWithValidationError(w, r, fields)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", err)
		return
	}

	id, err := h.taskService.CreateTask(r.Context(), req.ToDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Info("task accepted", "task_id", id, "pair_count", len(req.Pairs))
	w.Header().Set("Location", "/api/tasks/"+id.String())
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateTaskResponse{TaskID: id})
}

// GetTask handles GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	rec, err := h.taskService.GetStatus(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(rec))
}
