package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/newslens/internal/classifier"
	"github.com/phrazzld/newslens/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ErrNilClassifier is returned when the engine is built without a classifier.
var ErrNilClassifier = errors.New("classifier cannot be nil")

// Config holds tuning options for the engine.
type Config struct {
	// ItemConcurrency bounds how many items are classified at once.
	// Values below 1 are treated as 1.
	ItemConcurrency int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{ItemConcurrency: 4}
}

// Engine runs the classification fan-out for one task.
type Engine struct {
	classifier  classifier.Classifier
	concurrency int
	logger      *slog.Logger
}

// NewEngine creates an Engine backed by c.
func NewEngine(c classifier.Classifier, config Config, logger *slog.Logger) (*Engine, error) {
	if c == nil {
		return nil, ErrNilClassifier
	}
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := config.ItemConcurrency
	if concurrency < 1 {
		logger.Warn("invalid item concurrency specified, using default",
			"specified_concurrency", config.ItemConcurrency,
			"default_concurrency", 1)
		concurrency = 1
	}

	return &Engine{
		classifier:  c,
		concurrency: concurrency,
		logger:      logger.With("component", "aggregation_engine"),
	}, nil
}

// Run classifies every item against every distinct pair and returns the
// per-item records together with the per-pair averages.
//
// It fails with domain.ErrEmptyInput when items is empty. The first
// classifier failure aborts the run and no partial result is returned.
func (e *Engine) Run(ctx context.Context, items []string, pairs []domain.CategoryPair) (*domain.TaskResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyInput
	}

	distinct := domain.ClassificationRequest{Pairs: pairs}.DistinctPairs()
	e.logger.DebugContext(ctx, "classifying batch",
		"item_count", len(items),
		"pair_count", len(distinct))

	// Each goroutine owns exactly one slot; summaries are reduced after Wait.
	classified := make([]domain.ItemClassification, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, text := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			scores := make([]domain.PairScore, 0, len(distinct))
			for _, pair := range distinct {
				probs, err := e.classifier.Predict(gctx, text, classifier.Labels(pair.Labels()))
				if err != nil {
					return fmt.Errorf("classify item %d against %q: %w",
						i, pair.Key(), domain.NewCollaboratorError("classifier", err))
				}
				scores = append(scores, domain.PairScore{Pair: pair.Key(), P1: probs[0], P2: probs[1]})
			}

			classified[i] = domain.ItemClassification{Text: text, Scores: scores}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.DebugContext(ctx, "batch classification aborted", "error", err)
		return nil, err
	}

	return &domain.TaskResult{
		Items:   classified,
		Summary: summarize(classified, distinct),
	}, nil
}

// summarize folds item scores into per-pair averages.
func summarize(items []domain.ItemClassification, pairs []domain.CategoryPair) map[string]domain.AverageSummary {
	sums := make(map[string]*domain.PairSummary, len(pairs))
	for _, pair := range pairs {
		sums[pair.Key()] = &domain.PairSummary{}
	}

	for _, item := range items {
		for _, score := range item.Scores {
			sums[score.Pair].Add(score.P1, score.P2)
		}
	}

	summary := make(map[string]domain.AverageSummary, len(sums))
	for key, s := range sums {
		summary[key] = s.Average()
	}
	return summary
}
