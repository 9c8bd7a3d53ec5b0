package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/newslens/internal/classifier"
)

type instrumentedClassifier struct {
	next     classifier.Classifier
	provider string
}

// InstrumentClassifier records latency and errors of every Predict call.
func InstrumentClassifier(next classifier.Classifier, provider string) classifier.Classifier {
	return &instrumentedClassifier{next: next, provider: provider}
}

func (c *instrumentedClassifier) Predict(
	ctx context.Context,
	text string,
	labels classifier.Labels,
) (classifier.Probabilities, error) {
	start := time.Now()
	p, err := c.next.Predict(ctx, text, labels)
	ClassificationLatency.WithLabelValues(c.provider).Observe(time.Since(start).Seconds())
	if err != nil {
		ClassificationErrors.WithLabelValues(c.provider).Inc()
	}
	return p, err
}

type instrumentedCache struct {
	next    classifier.Cache
	backend string
}

// InstrumentCache counts hits, misses and errors of a prediction cache.
func InstrumentCache(next classifier.Cache, backend string) classifier.Cache {
	return &instrumentedCache{next: next, backend: backend}
}

func (c *instrumentedCache) Get(ctx context.Context, key string) (classifier.Probabilities, bool, error) {
	p, ok, err := c.next.Get(ctx, key)
	switch {
	case err != nil:
		CacheLookups.WithLabelValues(c.backend, "error").Inc()
	case ok:
		CacheLookups.WithLabelValues(c.backend, "hit").Inc()
	default:
		CacheLookups.WithLabelValues(c.backend, "miss").Inc()
	}
	return p, ok, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, p classifier.Probabilities) error {
	return c.next.Set(ctx, key, p)
}

// Middleware records request counts and durations labelled by the matched
// chi route pattern, so path parameters don't explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
