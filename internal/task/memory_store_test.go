package task

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/newslens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	req := testRequest(t)

	rec, err := store.Create(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, uuid.Version(4), rec.ID.Version())
	assert.Equal(t, StatusPending, rec.Status)
	assert.Nil(t, rec.Result)
	assert.Nil(t, rec.Error)
	assert.Equal(t, req, rec.Request)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestMemoryStore_CreateRetriesOnCollision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	fixed := uuid.New()
	next := uuid.New()
	ids := []uuid.UUID{fixed, fixed, next}
	store.newID = func() uuid.UUID {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := store.Create(ctx, testRequest(t))
	require.NoError(t, err)
	second, err := store.Create(ctx, testRequest(t))
	require.NoError(t, err)

	assert.Equal(t, fixed, first.ID)
	assert.Equal(t, next, second.ID)
}

func TestMemoryStore_CreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	fixed := uuid.New()
	store.newID = func() uuid.UUID { return fixed }

	_, err := store.Create(ctx, testRequest(t))
	require.NoError(t, err)
	_, err = store.Create(ctx, testRequest(t))
	assert.Error(t, err)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	t.Parallel()
	_, err := NewMemoryStore().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryStore_GetReturnsSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	rec, err := store.Create(ctx, testRequest(t))
	require.NoError(t, err)

	snapshot, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	snapshot.Status = StatusFailed
	snapshot.Request.Pairs[0].Class1 = "mutated"

	again, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
	assert.Equal(t, "positive", again.Request.Pairs[0].Class1)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("complete", func(t *testing.T) {
		store := NewMemoryStore()
		rec, err := store.Create(ctx, testRequest(t))
		require.NoError(t, err)

		require.NoError(t, store.MarkProcessing(ctx, rec.ID))
		got, _ := store.Get(ctx, rec.ID)
		assert.Equal(t, StatusProcessing, got.Status)

		result := &domain.TaskResult{
			Items:   []domain.ItemClassification{},
			Summary: map[string]domain.AverageSummary{"positive / negative": {AvgP1: 0.5, AvgP2: 0.5, Count: 0}},
		}
		require.NoError(t, store.Commit(ctx, rec.ID, Succeeded(result)))

		got, _ = store.Get(ctx, rec.ID)
		assert.Equal(t, StatusComplete, got.Status)
		require.NotNil(t, got.Result)
		assert.Nil(t, got.Error)
		assert.Equal(t, result.Summary, got.Result.Summary)
	})

	t.Run("failed", func(t *testing.T) {
		store := NewMemoryStore()
		rec, err := store.Create(ctx, testRequest(t))
		require.NoError(t, err)
		require.NoError(t, store.MarkProcessing(ctx, rec.ID))

		require.NoError(t, store.Commit(ctx, rec.ID, Failed("Parsing error")))

		got, _ := store.Get(ctx, rec.ID)
		assert.Equal(t, StatusFailed, got.Status)
		assert.Nil(t, got.Result)
		require.NotNil(t, got.Error)
		assert.Equal(t, "Parsing error", *got.Error)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		store := NewMemoryStore()
		rec, err := store.Create(ctx, testRequest(t))
		require.NoError(t, err)
		require.NoError(t, store.MarkProcessing(ctx, rec.ID))
		require.NoError(t, store.Commit(ctx, rec.ID, Failed("boom")))

		assert.ErrorIs(t, store.Commit(ctx, rec.ID, Succeeded(&domain.TaskResult{})), ErrTerminalState)
		assert.ErrorIs(t, store.MarkProcessing(ctx, rec.ID), ErrTerminalState)

		got, _ := store.Get(ctx, rec.ID)
		assert.Equal(t, StatusFailed, got.Status)
		assert.Equal(t, "boom", *got.Error)
	})

	t.Run("processing twice is invalid", func(t *testing.T) {
		store := NewMemoryStore()
		rec, err := store.Create(ctx, testRequest(t))
		require.NoError(t, err)
		require.NoError(t, store.MarkProcessing(ctx, rec.ID))
		assert.ErrorIs(t, store.MarkProcessing(ctx, rec.ID), ErrInvalidTransition)
	})

	t.Run("unknown ids", func(t *testing.T) {
		store := NewMemoryStore()
		id := uuid.New()
		assert.ErrorIs(t, store.MarkProcessing(ctx, id), ErrTaskNotFound)
		assert.ErrorIs(t, store.Commit(ctx, id, Failed("x")), ErrTaskNotFound)
		assert.ErrorIs(t, store.Remove(ctx, id), ErrTaskNotFound)
	})
}

func TestMemoryStore_RemoveAndCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	a, _ := store.Create(ctx, testRequest(t))
	b, _ := store.Create(ctx, testRequest(t))
	c, _ := store.Create(ctx, testRequest(t))
	require.NoError(t, store.MarkProcessing(ctx, b.ID))
	require.NoError(t, store.MarkProcessing(ctx, c.ID))
	require.NoError(t, store.Commit(ctx, c.ID, Failed("x")))

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{
		StatusPending:    1,
		StatusProcessing: 1,
		StatusComplete:   0,
		StatusFailed:     1,
	}, counts)

	require.NoError(t, store.Remove(ctx, a.ID))
	_, err = store.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	ids := make(chan uuid.UUID, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := store.Create(ctx, testRequest(t))
			if assert.NoError(t, err) {
				ids <- rec.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uuid.UUID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true

		wg.Add(2)
		go func(id uuid.UUID) {
			defer wg.Done()
			_ = store.MarkProcessing(ctx, id)
			_ = store.Commit(ctx, id, Failed("done"))
		}(id)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, _ = store.Get(ctx, id)
		}(id)
	}
	wg.Wait()

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, counts[StatusFailed])
}
