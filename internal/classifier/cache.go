package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
)

// ErrNilClassifier is returned when a decorator is built without an inner classifier.
var ErrNilClassifier = errors.New("classifier cannot be nil")

// Cache stores predictions keyed by text and labels.
type Cache interface {
	// Get returns the cached probabilities and whether they were found.
	Get(ctx context.Context, key string) (Probabilities, bool, error)

	// Set stores probabilities under key.
	Set(ctx context.Context, key string, p Probabilities) error
}

// CacheKey derives the cache key of a (text, labels) lookup.
func CacheKey(text string, labels Labels) string {
	h := sha256.New()
	h.Write([]byte(labels[0]))
	h.Write([]byte{0})
	h.Write([]byte(labels[1]))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// CachingClassifier serves predictions from a Cache and falls back to the
// wrapped classifier on a miss. Cache failures are logged and treated as misses.
type CachingClassifier struct {
	next   Classifier
	cache  Cache
	logger *slog.Logger
}

// NewCachingClassifier wraps next with cache.
func NewCachingClassifier(next Classifier, cache Cache, logger *slog.Logger) (*CachingClassifier, error) {
	if next == nil {
		return nil, ErrNilClassifier
	}
	if cache == nil {
		return nil, errors.New("cache cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingClassifier{
		next:   next,
		cache:  cache,
		logger: logger.With("component", "prediction_cache"),
	}, nil
}

// Predict implements Classifier.
func (c *CachingClassifier) Predict(ctx context.Context, text string, labels Labels) (Probabilities, error) {
	key := CacheKey(text, labels)

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "prediction cache lookup failed", "error", err)
	} else if ok {
		return cached, nil
	}

	probs, err := c.next.Predict(ctx, text, labels)
	if err != nil {
		return Probabilities{}, err
	}

	if err := c.cache.Set(ctx, key, probs); err != nil {
		c.logger.WarnContext(ctx, "prediction cache store failed", "error", err)
	}
	return probs, nil
}

// MemoryCache is an unbounded process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Probabilities
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Probabilities)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (Probabilities, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.entries[key]
	return p, ok, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, p Probabilities) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = p
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
