package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/newslens/internal/aggregate"
	"github.com/phrazzld/newslens/internal/classifier"
	"github.com/phrazzld/newslens/internal/domain"
	"github.com/phrazzld/newslens/internal/source"
	"github.com/phrazzld/newslens/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedScores returns probabilities keyed by text for the first label.
func fixedScores(p1 map[string]float64) classifier.Func {
	return func(ctx context.Context, text string, labels classifier.Labels) (classifier.Probabilities, error) {
		p, ok := p1[text]
		if !ok {
			return classifier.Probabilities{}, errors.New("unexpected text " + text)
		}
		return classifier.Probabilities{p, 1 - p}, nil
	}
}

func abRequest() domain.ClassificationRequest {
	return domain.ClassificationRequest{Pairs: []domain.CategoryPair{{Class1: "A", Class2: "B"}}}
}

func newEngine(t *testing.T, c classifier.Classifier) *aggregate.Engine {
	t.Helper()
	engine, err := aggregate.NewEngine(c, aggregate.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	return engine
}

func TestNewPipeline(t *testing.T) {
	engine := newEngine(t, fixedScores(nil))

	_, err := NewPipeline(nil, engine, discardLogger())
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = NewPipeline(source.NewStaticSource(nil), nil, discardLogger())
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestPipeline_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates fetched items", func(t *testing.T) {
		src := source.NewStaticSource([]string{"x", "y"})
		p, err := NewPipeline(src, newEngine(t, fixedScores(map[string]float64{"x": 0.8, "y": 0.6})), discardLogger())
		require.NoError(t, err)

		result, err := p.Process(ctx, abRequest())
		require.NoError(t, err)

		summary := result.Summary["A / B"]
		assert.Equal(t, 2, summary.Count)
		assert.InDelta(t, 0.7, summary.AvgP1, 1e-9)
		assert.InDelta(t, 0.3, summary.AvgP2, 1e-9)
	})

	t.Run("empty batch is a parsing error", func(t *testing.T) {
		p, err := NewPipeline(source.NewStaticSource(nil), newEngine(t, fixedScores(nil)), discardLogger())
		require.NoError(t, err)

		_, err = p.Process(ctx, abRequest())
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
		assert.Equal(t, "Parsing error", domain.FailureMessage(err))
	})

	t.Run("source failure keeps its message", func(t *testing.T) {
		src := source.Func(func(ctx context.Context) ([]string, error) {
			return nil, errors.New("connection reset by peer")
		})
		p, err := NewPipeline(src, newEngine(t, fixedScores(nil)), discardLogger())
		require.NoError(t, err)

		_, err = p.Process(ctx, abRequest())
		var collabErr *domain.CollaboratorError
		require.ErrorAs(t, err, &collabErr)
		assert.Equal(t, "source", collabErr.Collaborator)
		assert.Equal(t, "connection reset by peer", domain.FailureMessage(err))
	})
}

// End to end through the dispatcher: create, poll, read the summary.
func TestPipeline_WithDispatcher(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, items []string, c classifier.Classifier) *task.Record {
		t.Helper()
		p, err := NewPipeline(source.NewStaticSource(items), newEngine(t, c), discardLogger())
		require.NoError(t, err)

		d, err := task.NewDispatcher(task.NewMemoryStore(), p, nil, task.DefaultDispatcherConfig(), discardLogger())
		require.NoError(t, err)
		d.Start()
		defer func() { _ = d.Stop(context.Background()) }()

		svc, err := NewTaskService(d, discardLogger())
		require.NoError(t, err)

		id, err := svc.CreateTask(ctx, abRequest())
		require.NoError(t, err)

		var rec *task.Record
		require.Eventually(t, func() bool {
			got, err := svc.GetStatus(ctx, id)
			if err != nil {
				return false
			}
			rec = got
			return got.Status.IsTerminal()
		}, 2*time.Second, 5*time.Millisecond)
		return rec
	}

	t.Run("complete", func(t *testing.T) {
		rec := run(t, []string{"x", "y"}, fixedScores(map[string]float64{"x": 0.8, "y": 0.6}))
		assert.Equal(t, task.StatusComplete, rec.Status)
		assert.Nil(t, rec.Error)
		require.NotNil(t, rec.Result)
		assert.Len(t, rec.Result.Items, 2)
		assert.InDelta(t, 0.7, rec.Result.Summary["A / B"].AvgP1, 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		rec := run(t, nil, fixedScores(nil))
		assert.Equal(t, task.StatusFailed, rec.Status)
		assert.Nil(t, rec.Result)
		assert.Equal(t, "Parsing error", *rec.Error)
	})

	t.Run("classifier failure", func(t *testing.T) {
		failing := classifier.Func(func(ctx context.Context, text string, labels classifier.Labels) (classifier.Probabilities, error) {
			return classifier.Probabilities{}, errors.New("CUDA out of memory")
		})
		rec := run(t, []string{"x"}, failing)
		assert.Equal(t, task.StatusFailed, rec.Status)
		assert.Equal(t, "CUDA out of memory", *rec.Error)
	})
}
