package tass

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/newslens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestSource(t *testing.T, baseURL string, pages int) *Source {
	t.Helper()
	src, err := NewSource(config.TASSConfig{
		BaseURL:    baseURL,
		Pages:      pages,
		PageSize:   2,
		Lang:       "ru",
		Rubrics:    []string{"/ekonomika", "/politika"},
		MaxRetries: 2,
		Timeout:    time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	src.baseDelay = time.Millisecond
	src.pick = func(int) int { return 1 }
	return src
}

func TestNewSource_Validation(t *testing.T) {
	_, err := NewSource(config.TASSConfig{Rubrics: []string{"/x"}}, nil)
	assert.Error(t, err)

	_, err = NewSource(config.TASSConfig{BaseURL: "http://example.test"}, nil)
	assert.Error(t, err)
}

func TestSource_FetchPaginates(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []map[string]string
	)
	pages := map[string][]feedItem{
		"0": {
			{Title: strPtr("Курс рубля"), Lead: strPtr("Рубль укрепился")},
			{Title: strPtr("Без лида")},
		},
		"2": {
			{Lead: strPtr("Без заголовка")},
			{Title: strPtr("Выборы"), Lead: strPtr("Итоги голосования")},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, map[string]string{
			"limit":   q.Get("limit"),
			"offset":  q.Get("offset"),
			"lang":    q.Get("lang"),
			"rubrics": q.Get("rubrics"),
			"sort":    q.Get("sort"),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(feedPage{Result: pages[q.Get("offset")]})
	}))
	defer srv.Close()

	items, err := newTestSource(t, srv.URL, 3).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Курс рубля: Рубль укрепился", "Выборы: Итоги голосования"}, items)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 3, "third page is requested and comes back empty")
	for i, q := range queries {
		assert.Equal(t, "2", q["limit"])
		assert.Equal(t, strconv.Itoa(i*2), q["offset"])
		assert.Equal(t, "ru", q["lang"])
		assert.Equal(t, "/politika", q["rubrics"])
		assert.Equal(t, "-es_updated_dt", q["sort"])
	}
}

func TestSource_PagesThroughOneRubricPerFetch(t *testing.T) {
	var (
		mu      sync.Mutex
		rubrics []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		rubrics = append(rubrics, r.URL.Query().Get("rubrics"))
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(feedPage{Result: []feedItem{
			{Title: strPtr("t"), Lead: strPtr("l")},
		}})
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL, 4)
	var picks atomic.Int32
	src.pick = func(n int) int { return int(picks.Add(1)-1) % n }

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, int32(1), picks.Load())

	mu.Lock()
	assert.Equal(t, []string{"/ekonomika", "/ekonomika", "/ekonomika", "/ekonomika"}, rubrics)
	rubrics = nil
	mu.Unlock()

	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/politika", "/politika", "/politika", "/politika"}, rubrics)
}

func TestSource_StopsOnEmptyPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	items, err := newTestSource(t, srv.URL, 10).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch {
		case n == 1:
			http.Error(w, "busy", http.StatusServiceUnavailable)
		case r.URL.Query().Get("offset") == "0":
			_, _ = w.Write([]byte(`{"result":[{"title":"A","lead":"B"}]}`))
		default:
			_, _ = w.Write([]byte(`{"result":[]}`))
		}
	}))
	defer srv.Close()

	items, err := newTestSource(t, srv.URL, 2).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A: B"}, items)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSource_PersistentFailureReturnsPartialBatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("offset") == "0" {
			_, _ = w.Write([]byte(`{"result":[{"title":"A","lead":"B"},{"title":"C","lead":"D"}]}`))
			return
		}
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	items, err := newTestSource(t, srv.URL, 5).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A: B", "C: D"}, items)
	assert.Equal(t, int32(4), calls.Load(), "one good page plus three attempts at the second")
}

func TestSource_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such rubric", http.StatusNotFound)
	}))
	defer srv.Close()

	items, err := newTestSource(t, srv.URL, 3).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSource_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL, 3)
	src.baseDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := src.Fetch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
