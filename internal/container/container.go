package container

import (
	"context"
	"fmt"

	"textattack/adapters/excel"
	"textattack/adapters/languagemodel/ngram"
	"textattack/adapters/languagemodel/remote"
	"textattack/adapters/rng"
	"textattack/adapters/store"
	"textattack/adapters/thesaurus"
	"textattack/app"
	"textattack/internal"
	"textattack/internal/api"
	"textattack/internal/augmentation"
	"textattack/internal/batch"
	"textattack/internal/config"
	"textattack/internal/constraints"
	"textattack/internal/language"
	"textattack/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RunRepo ports.AugmentationRepository

	// Language resources
	Language      language.Provider
	LanguageModel ports.LanguageModel
	Resources     augmentation.Resources

	// Services
	Runner              *batch.Runner
	AugmentationService *app.AugmentationService
	Server              *api.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLoggerWithFormat(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Format),
	}
	internal.DefaultLogger = c.Logger

	return c, nil
}

// Init builds every component. Resource files are read here; word embeddings
// are loaded on first use by the embedding recipe.
func (c *Container) Init(ctx context.Context) error {
	if err := c.initLanguage(ctx); err != nil {
		return fmt.Errorf("failed to initialize language resources: %w", err)
	}

	if err := c.initLanguageModel(); err != nil {
		return fmt.Errorf("failed to initialize language model: %w", err)
	}

	if err := c.InitWithDatabase(ctx); err != nil {
		return err
	}

	c.initServices()

	c.Logger.Info("Container initialized: language=%s recipes=%v", c.Language.Name(), augmentation.RecipeNames())
	return nil
}

// InitWithDatabase opens the run store and runs its migrations
func (c *Container) InitWithDatabase(ctx context.Context) error {
	db, err := store.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", c.Config.Database.Driver, err)
	}
	c.DB = db
	c.RunRepo = store.NewRunRepository(db)
	c.Logger.Info("Run store ready (%s)", c.Config.Database.Driver)
	return nil
}

// initLanguage selects the language provider and loads the lexical resources
func (c *Container) initLanguage(ctx context.Context) error {
	language.SetResourceDir(c.Config.Language.ResourceDir)
	provider, err := language.SetLanguage(ctx, c.Config.Language.Name)
	if err != nil {
		return err
	}
	c.Language = provider
	c.Resources.Stopwords = provider.Stopwords()

	if path := c.Config.Resources.ThesaurusFile; path != "" {
		th, err := thesaurus.LoadFile(path)
		if err != nil {
			return err
		}
		c.Resources.Thesaurus = th
		if words := th.Stopwords(); len(words) > 0 {
			c.Resources.Stopwords = words
		}
		c.Logger.Info("Thesaurus loaded from %s (%d entries)", path, th.Len())
	} else {
		c.Logger.Warn("No THESAURUS_FILE configured; eda, wordnet and synonym_insertion are unavailable")
	}

	if path := c.Config.Resources.StopwordFile; path != "" {
		list, err := thesaurus.LoadFile(path)
		if err != nil {
			return err
		}
		c.Resources.Stopwords = list.Stopwords()
		c.Logger.Info("Stopwords loaded from %s (%d words)", path, len(c.Resources.Stopwords))
	}
	return nil
}

// initLanguageModel attaches the language-model constraint to every recipe when configured
func (c *Container) initLanguageModel() error {
	cfg := c.Config.LanguageModel
	if !cfg.Enabled() {
		return nil
	}

	switch {
	case cfg.ARPAFile != "":
		model, err := ngram.LoadFile(cfg.ARPAFile)
		if err != nil {
			return err
		}
		c.LanguageModel = model
		c.Logger.Info("Language model: %d-gram from %s", model.Order(), cfg.ARPAFile)
	default:
		client, err := remote.NewClient(remote.Config{
			BaseURL: cfg.Endpoint,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return err
		}
		c.LanguageModel = client
		c.Logger.Info("Language model: remote scorer at %s", client.BaseURL)
	}

	// Each step is scored against the text it was derived from: the newly modified
	// indices of a multi-step chain refer to its last step and can run past the
	// original input.
	constraint, err := constraints.NewLanguageModel(c.LanguageModel, constraints.LanguageModelOptions{
		MaxLogProbDiff: cfg.MaxLogProbDiff,
		MaxProbDiff:    cfg.MaxProbDiff,
	})
	if err != nil {
		return err
	}
	c.Resources.Extra = append(c.Resources.Extra, constraint)
	return nil
}

func (c *Container) initServices() {
	aug := c.Config.Augmentation
	c.Runner = batch.NewRunner(rng.New(), aug.Concurrency, c.Logger)
	c.AugmentationService = app.NewAugmentationService(
		c.Runner,
		c.Resources,
		app.Defaults{
			Recipe:           aug.Recipe,
			Alpha:            aug.Alpha,
			NumAugmentations: aug.NumAugmentations,
			NumWordsToSwap:   aug.NumWordsToSwap,
			Seed:             aug.Seed,
		},
		c.RunRepo,
		excel.NewDataReader(excel.DefaultDatasetConfig(), c.Logger),
		excel.NewRunWriter(c.Logger),
		c.Logger,
	)
	c.Server = api.NewServer(c.AugmentationService, c.Logger, c.Config.Server.GinMode)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Server != nil {
		if err := c.Server.Shutdown(ctx); err != nil {
			c.Logger.Warn("HTTP server shutdown: %v", err)
		}
	}

	_ = c.Logger.Sync()

	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
