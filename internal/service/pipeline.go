package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/newslens/internal/domain"
	"github.com/phrazzld/newslens/internal/source"
)

// Engine scores text items against category pairs.
type Engine interface {
	Run(ctx context.Context, items []string, pairs []domain.CategoryPair) (*domain.TaskResult, error)
}

// Pipeline fetches text items and aggregates their classification.
// It implements task.Processor.
type Pipeline struct {
	source source.TextSource
	engine Engine
	logger *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(src source.TextSource, engine Engine, logger *slog.Logger) (*Pipeline, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: text source", ErrNilDependency)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source: src,
		engine: engine,
		logger: logger.With("component", "classification_pipeline"),
	}, nil
}

// Process fetches a batch of items and classifies each against every pair.
func (p *Pipeline) Process(ctx context.Context, req domain.ClassificationRequest) (*domain.TaskResult, error) {
	items, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch text items: %w", domain.NewCollaboratorError("source", err))
	}

	p.logger.Debug("fetched text items", "item_count", len(items), "pair_count", len(req.Pairs))
	if len(items) == 0 {
		return nil, domain.ErrEmptyInput
	}

	result, err := p.engine.Run(ctx, items, req.Pairs)
	if err != nil {
		return nil, err
	}
	return result, nil
}
