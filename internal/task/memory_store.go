package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/newslens/internal/domain"
)

// maxIDAttempts bounds id regeneration on collision.
const maxIDAttempts = 5

// MemoryStore keeps task records in a map guarded by a single RWMutex.
// Readers copy records out under the read lock; no lock is held while
// callers do anything else.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	newID   func() uuid.UUID
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*Record),
		newID:   uuid.New,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new Pending record.
func (s *MemoryStore) Create(ctx context.Context, req domain.ClassificationRequest) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if _, exists := s.records[id]; exists {
			continue
		}
		now := s.now()
		rec := &Record{
			ID:        id,
			Status:    StatusPending,
			Request:   req.Clone(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.records[id] = rec
		return rec.clone(), nil
	}

	return nil, fmt.Errorf("failed to allocate unique task id after %d attempts", maxIDAttempts)
}

// Get returns a snapshot of the record.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return rec.clone(), nil
}

// MarkProcessing moves a Pending record to Processing.
func (s *MemoryStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrTaskNotFound
	}
	if rec.Status.IsTerminal() {
		return ErrTerminalState
	}
	if rec.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rec.Status, StatusProcessing)
	}

	rec.Status = StatusProcessing
	rec.UpdatedAt = s.now()
	return nil
}

// Commit sets the terminal status and its payload in one step.
func (s *MemoryStore) Commit(ctx context.Context, id uuid.UUID, outcome Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrTaskNotFound
	}
	if rec.Status.IsTerminal() {
		return ErrTerminalState
	}

	rec.Status = outcome.Status()
	if outcome.failed {
		msg := outcome.errMsg
		rec.Error = &msg
		rec.Result = nil
	} else {
		rec.Result = outcome.result.Clone()
		rec.Error = nil
	}
	rec.UpdatedAt = s.now()
	return nil
}

// Remove deletes a record.
func (s *MemoryStore) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrTaskNotFound
	}
	delete(s.records, id)
	return nil
}

// Counts returns the number of records per status. Every status is present.
func (s *MemoryStore) Counts(ctx context.Context) (map[Status]int, error) {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		counts[rec.Status]++
	}
	return counts, nil
}
