// Package app wires infrastructure adapters to use cases.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hfujita/taskpilot/internal/domain"
	"github.com/hfujita/taskpilot/internal/infra/classifier"
	"github.com/hfujita/taskpilot/internal/infra/config"
	"github.com/hfujita/taskpilot/internal/infra/httpapi"
	"github.com/hfujita/taskpilot/internal/infra/sqlstore"
	"github.com/hfujita/taskpilot/internal/usecase"
)

// Container holds the application's wired dependencies.
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Tasks      domain.TaskRepository
	Store      domain.StoreInitializer
	Classifier domain.Classifier
	Clock      domain.Clock

	store *sqlstore.Store
}

// New builds a container from configuration, opening the database and
// constructing the Gemini classifier.
func New(cfg *config.Config) (*Container, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))

	store, err := sqlstore.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	vocabulary := classifier.DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		vocabulary, err = classifier.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
	}

	gemini := classifier.New(classifier.Options{
		APIKey:        cfg.GeminiAPIKey,
		Model:         cfg.GeminiModel,
		FallbackModel: cfg.GeminiFallbackModel,
		Vocabulary:    vocabulary,
		Timeout:       cfg.APITimeout,
	}, logger)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Tasks:      store,
		Store:      store,
		Classifier: gemini,
		Clock:      domain.RealClock{},
		store:      store,
	}, nil
}

// NewWithDeps builds a container from pre-built dependencies, used by tests.
func NewWithDeps(cfg *config.Config, logger *slog.Logger, tasks domain.TaskRepository, cls domain.Classifier, clock domain.Clock) *Container {
	return &Container{
		Config:     cfg,
		Logger:     logger,
		Tasks:      tasks,
		Classifier: cls,
		Clock:      clock,
	}
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// UseCases builds the use case set served over HTTP.
func (c *Container) UseCases() httpapi.UseCases {
	return httpapi.UseCases{
		CreateTask:       usecase.NewCreateTask(c.Tasks, c.Classifier, c.Clock, c.Logger),
		GetTask:          usecase.NewGetTask(c.Tasks, c.Clock),
		ListTasks:        usecase.NewListTasks(c.Tasks, c.Clock),
		UpdateTask:       usecase.NewUpdateTask(c.Tasks, c.Clock),
		DeleteTask:       usecase.NewDeleteTask(c.Tasks),
		GenerateSubtasks: usecase.NewGenerateSubtasks(c.Tasks, c.Classifier, c.Clock, c.Logger),
	}
}
