package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/newslens/internal/aggregate"
	"github.com/phrazzld/newslens/internal/api"
	"github.com/phrazzld/newslens/internal/classifier"
	"github.com/phrazzld/newslens/internal/config"
	"github.com/phrazzld/newslens/internal/events"
	"github.com/phrazzld/newslens/internal/platform/cache"
	"github.com/phrazzld/newslens/internal/platform/gemini"
	"github.com/phrazzld/newslens/internal/platform/metrics"
	"github.com/phrazzld/newslens/internal/platform/nli"
	"github.com/phrazzld/newslens/internal/platform/tass"
	"github.com/phrazzld/newslens/internal/service"
	"github.com/phrazzld/newslens/internal/source"
	"github.com/phrazzld/newslens/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	classifier classifier.Classifier
	source     source.TextSource

	store       *task.MemoryStore
	emitter     *events.InMemoryEventEmitter
	dispatcher  *task.Dispatcher
	taskService service.TaskService

	// healthChecks are reported on /health
	healthChecks map[string]api.Pinger
	closers      []func() error
}

// newApplication creates a new application instance with all dependencies
// initialized. Collaborators are chosen from configuration here, once; the
// dispatcher is started but no HTTP listener is opened.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:       cfg,
		logger:       logger,
		healthChecks: make(map[string]api.Pinger),
	}

	var err error
	if app.classifier, err = app.setupClassifier(ctx); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	if app.source, err = app.setupSource(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize text source: %w", err)
	}

	engine, err := aggregate.NewEngine(app.classifier, aggregate.Config{
		ItemConcurrency: cfg.Task.ItemConcurrency,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create aggregation engine: %w", err)
	}

	pipeline, err := service.NewPipeline(app.source, engine, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	app.store = task.NewMemoryStore()
	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(metrics.NewRecorder())

	app.dispatcher, err = task.NewDispatcher(app.store, pipeline, app.emitter, task.DispatcherConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		TaskTimeout: cfg.Task.Timeout,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task dispatcher: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.dispatcher, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	metrics.ObserveQueueDepth(app.dispatcher.QueueDepth)
	app.dispatcher.Start()
	logger.Info("application initialized",
		"classifier", cfg.Classifier.Provider,
		"source", cfg.Source.Provider,
		"cache_enabled", cfg.Classifier.Cache.Enabled)
	return app, nil
}

// setupClassifier builds the configured classifier, instruments it and
// optionally puts a prediction cache in front of it.
func (app *application) setupClassifier(ctx context.Context) (classifier.Classifier, error) {
	cfg := app.config

	var base classifier.Classifier
	switch cfg.Classifier.Provider {
	case config.ClassifierGemini:
		g, err := gemini.NewClassifier(ctx, app.logger, cfg.LLM)
		if err != nil {
			return nil, err
		}
		base = g
		app.logger.Info("Gemini classifier initialized", "model", cfg.LLM.ModelName)
	case config.ClassifierNLI:
		c := nli.NewClient(cfg.NLI.BaseURL, cfg.NLI.TargetLabel, cfg.NLI.Timeout)
		base = c
		app.healthChecks["classifier"] = c
		app.logger.Info("NLI classifier initialized", "base_url", cfg.NLI.BaseURL)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Classifier.Provider)
	}

	instrumented := metrics.InstrumentClassifier(base, cfg.Classifier.Provider)
	if !cfg.Classifier.Cache.Enabled {
		return instrumented, nil
	}

	var store classifier.Cache
	switch cfg.Classifier.Cache.Backend {
	case config.CacheRedis:
		client, err := cache.Dial(ctx, cfg.Classifier.Cache.RedisAddr)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.healthChecks["cache"] = api.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		store = cache.NewRedisCache(client, cfg.Classifier.Cache.TTL)
	default:
		store = classifier.NewMemoryCache()
	}

	backend := cfg.Classifier.Cache.Backend
	if backend == "" {
		backend = config.CacheMemory
	}
	cached, err := classifier.NewCachingClassifier(instrumented, metrics.InstrumentCache(store, backend), app.logger)
	if err != nil {
		return nil, err
	}
	app.logger.Info("prediction cache enabled", "backend", backend, "ttl", cfg.Classifier.Cache.TTL)
	return cached, nil
}

func (app *application) setupSource() (source.TextSource, error) {
	switch app.config.Source.Provider {
	case config.SourceStatic:
		return source.NewStaticSource(app.config.Source.StaticItems), nil
	case config.SourceTASS:
		return tass.NewSource(app.config.TASS, app.logger)
	default:
		return nil, fmt.Errorf("unknown source provider %q", app.config.Source.Provider)
	}
}

// shutdown stops accepting tasks, lets queued and running ones finish
// within ctx and releases external connections.
func (app *application) shutdown(ctx context.Context) error {
	var err error
	if app.dispatcher != nil {
		if stopErr := app.dispatcher.Stop(ctx); stopErr != nil {
			app.logger.Warn("task dispatcher did not drain before deadline", "error", stopErr)
			err = fmt.Errorf("failed to drain task dispatcher: %w", stopErr)
		}
	}
	return errors.Join(err, app.cleanup())
}

// cleanup releases external connections.
func (app *application) cleanup() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error("error closing resource", "error", err)
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
