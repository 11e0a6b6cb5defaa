package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/docbot/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docbot/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/docbot/internal/adapters/driven/storage"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
	"github.com/custodia-labs/docbot/internal/core/services"
	"github.com/custodia-labs/docbot/internal/logger"
)

// App holds the services wired for one CLI invocation. Heavy services
// (models, index) are built on first use so that config commands work
// without any provider configured.
type App struct {
	settings driving.SettingsService
	sources  interface{ Source(key string) string }
	prompts  *file.PromptStore
	metrics  *prometheus.Metrics

	// checkServices pings the configured providers.
	checkServices func(ctx context.Context, s *domain.AppSettings) []ai.CheckResult

	mu        sync.Mutex
	assistant driving.AssistantService
	ingest    driving.IngestService
	closers   []func() error
}

// current is the process-wide App, built on first use.
var (
	current   *App
	currentMu sync.Mutex
)

// loadApp returns the process-wide App, building it from --config on first use.
func loadApp() (*App, error) {
	currentMu.Lock()
	defer currentMu.Unlock()

	if current != nil {
		return current, nil
	}
	a, err := NewApp(configPath)
	if err != nil {
		return nil, err
	}
	current = a
	return a, nil
}

func closeApp() {
	currentMu.Lock()
	defer currentMu.Unlock()

	if current == nil {
		return
	}
	if err := current.Close(); err != nil {
		logger.Warn("Shutdown: %v", err)
	}
	current = nil
}

// NewApp wires configuration: the TOML file store, the environment
// overlay on top of it and the prompt store.
func NewApp(location string) (*App, error) {
	store, err := file.NewConfigStore(location)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	overlay := env.NewOverlay(store)

	prompts, err := file.NewPromptStore("", services.DefaultPrompts())
	if err != nil {
		logger.Warn("Prompt overrides disabled: %v", err)
		prompts = nil
	}

	return &App{
		settings:      services.NewSettingsService(overlay),
		sources:       overlay,
		prompts:       prompts,
		metrics:       prometheus.New(),
		checkServices: ai.CheckServices,
	}, nil
}

// Settings returns the settings service.
func (a *App) Settings() driving.SettingsService {
	return a.settings
}

// Source reports where a setting's value comes from.
func (a *App) Source(key string) string {
	if a.sources == nil {
		return "default"
	}
	return a.sources.Source(key)
}

// Assistant returns the question-answering pipeline. Configuration
// problems do not fail here: they are reported by every request until
// fixed, so a server can start before its providers are reachable.
func (a *App) Assistant(ctx context.Context) (driving.AssistantService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.assistant != nil {
		return a.assistant, nil
	}

	settings, err := a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	var setupErr error
	embedder, err := ai.CreateEmbeddingService(ctx, settings)
	if err != nil {
		setupErr = err
	} else {
		a.closers = append(a.closers, embedder.Close)
	}

	var index driven.ChunkIndex
	if setupErr == nil {
		idx, err := storage.OpenIndex(settings, embedder)
		if err != nil {
			setupErr = err
		} else {
			index = idx
			a.closers = append(a.closers, idx.Close)
		}
	}

	router := ai.NewRouter(settings)
	a.closers = append(a.closers, router.Close)

	opts := []services.PipelineOption{
		services.WithValidator(func() error {
			if err := settings.Validate(); err != nil {
				return err
			}
			if setupErr == nil || errors.Is(setupErr, domain.ErrConfiguration) {
				return setupErr
			}
			return fmt.Errorf("%w: %w", domain.ErrConfiguration, setupErr)
		}),
	}
	if a.prompts != nil {
		opts = append(opts, services.WithPromptStore(a.prompts))
	}
	if a.metrics != nil {
		opts = append(opts, services.WithMetrics(a.metrics))
	}

	a.assistant = services.NewPipeline(router, index, services.PipelineConfigFromSettings(settings), opts...)
	return a.assistant, nil
}

// Ingest returns an ingestion service that splits with splitter.
func (a *App) Ingest(ctx context.Context, splitter driven.Splitter) (driving.IngestService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ingest != nil {
		return a.ingest, nil
	}

	settings, err := a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, embedder.Close)

	index, err := storage.OpenIndex(settings, embedder)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, index.Close)

	if settings.Index.Backend == domain.IndexBackendMemory {
		logger.Warn("The memory index is discarded when docbot exits")
	}

	a.ingest = services.NewIngestService(splitter, embedder, index)
	return a.ingest, nil
}

// Check validates settings and pings the configured providers.
func (a *App) Check(ctx context.Context) (*domain.AppSettings, []ai.CheckResult, error) {
	settings, err := a.settings.Get()
	if err != nil {
		return nil, nil, err
	}
	if a.checkServices == nil {
		return settings, nil, nil
	}
	return settings, a.checkServices(ctx, settings), nil
}

// Prompts returns the prompt store, or nil when overrides are disabled.
func (a *App) Prompts() *file.PromptStore {
	return a.prompts
}

// Metrics returns the metrics recorder.
func (a *App) Metrics() *prometheus.Metrics {
	return a.metrics
}

// Close releases every service built so far, newest first.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
