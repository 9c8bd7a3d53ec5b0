package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/newslens/internal/api/shared"
	"github.com/phrazzld/newslens/internal/platform/logger"
	"github.com/phrazzld/newslens/internal/task"
)

const healthCheckTimeout = 2 * time.Second

// TaskCounter reports how many tasks are in each status.
type TaskCounter interface {
	Counts(ctx context.Context) (map[task.Status]int, error)
}

// QueueDepthReporter reports the number of jobs waiting for a worker.
type QueueDepthReporter interface {
	QueueDepth() int
}

// Pinger is a dependency whose reachability is reported on /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts an ordinary function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	counter    TaskCounter
	queue      QueueDepthReporter
	components map[string]Pinger
	logger     *slog.Logger
}

// NewHealthHandler creates a HealthHandler. components may be nil.
func NewHealthHandler(
	counter TaskCounter,
	queue QueueDepthReporter,
	components map[string]Pinger,
	logger *slog.Logger,
) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		counter:    counter,
		queue:      queue,
		components: components,
		logger:     logger.With("component", "health_handler"),
	}
}

// Health reports task counts and the state of optional components. A
// failing component marks the service "degraded" without failing the check;
// the task API itself keeps working.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	counts, err := h.counter.Counts(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to read task counts", err)
		return
	}

	resp := HealthResponse{
		Status: "ok",
		Tasks:  make(map[string]int, len(counts)),
	}
	for status, n := range counts {
		resp.Tasks[string(status)] = n
	}
	if h.queue != nil {
		resp.QueueDepth = h.queue.QueueDepth()
	}

	if len(h.components) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp.Components = make(map[string]string, len(h.components))
		for name, p := range h.components {
			if err := p.Ping(ctx); err != nil {
				log.Warn("health check failed", "component_name", name, "error", err)
				resp.Components[name] = "unavailable"
				resp.Status = "degraded"
				continue
			}
			resp.Components[name] = "ok"
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
