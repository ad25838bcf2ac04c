package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/internal"
	"textattack/internal/augmentation"
	"textattack/internal/batch"
	"textattack/internal/language"
	"textattack/internal/report"
	"textattack/ports"
)

// embeddingSource is implemented by transformations that carry their word vectors.
type embeddingSource interface {
	Embedding() ports.WordEmbedding
}

// Defaults are the recipe settings used when a request leaves them unset.
type Defaults struct {
	Recipe           string
	Alpha            float64
	NumAugmentations int
	NumWordsToSwap   int
	Seed             int64
}

// AugmentationService runs recipes over batches of inputs, summarizes them and
// stores the resulting runs.
type AugmentationService struct {
	runner    *batch.Runner
	resources augmentation.Resources
	defaults  Defaults
	repo      ports.AugmentationRepository
	reader    ports.DatasetReader
	writer    ports.DatasetWriter
	logger    *internal.Logger
}

// AugmentRequest describes one run. Nil fields fall back to the service defaults.
type AugmentRequest struct {
	Recipe           string   `json:"recipe"`
	Inputs           []string `json:"inputs"`
	Alpha            *float64 `json:"alpha,omitempty"`
	NumAugmentations *int     `json:"n_aug,omitempty"`
	NumWordsToSwap   *int     `json:"words_to_swap,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`
	// Persist stores the run when a repository is configured.
	Persist bool `json:"persist"`
}

// NewAugmentationService creates the service. repo, reader and writer may be nil;
// the operations that need them then fail.
func NewAugmentationService(
	runner *batch.Runner,
	resources augmentation.Resources,
	defaults Defaults,
	repo ports.AugmentationRepository,
	reader ports.DatasetReader,
	writer ports.DatasetWriter,
	logger *internal.Logger,
) *AugmentationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if defaults.Recipe == "" {
		defaults.Recipe = augmentation.RecipeEDA
	}
	return &AugmentationService{
		runner:    runner,
		resources: resources,
		defaults:  defaults,
		repo:      repo,
		reader:    reader,
		writer:    writer,
		logger:    logger,
	}
}

// Recipes lists the recipe names Augment accepts
func (s *AugmentationService) Recipes() []string {
	return augmentation.RecipeNames()
}

// Augment runs one recipe over every input. A zero seed is replaced by a
// random one, which is recorded in the run so it can be replayed.
func (s *AugmentationService) Augment(ctx context.Context, req AugmentRequest) (*domainAugmentation.Run, error) {
	recipe, params, seed := s.resolve(req)

	// Build once up front so configuration errors surface before any work is scheduled.
	res, err := s.resourcesFor(ctx, recipe)
	if err != nil {
		return nil, err
	}
	if _, err := augmentation.NewRecipe(recipe, params, res, augmentation.WithLogger(s.logger)); err != nil {
		return nil, err
	}

	build := func(rng *rand.Rand) (ports.Augmenter, error) {
		return augmentation.NewRecipe(recipe, params, res,
			augmentation.WithRNG(rng),
			augmentation.WithLogger(s.logger),
		)
	}

	start := time.Now()
	results, err := s.runner.Run(ctx, batch.Request{Recipe: recipe, Seed: seed, Inputs: req.Inputs}, build)
	if err != nil {
		return nil, err
	}

	run := &domainAugmentation.Run{
		ID:     core.NewRunID(),
		Recipe: recipe,
		Params: domainAugmentation.Params{
			Alpha:            params.Alpha,
			NumAugmentations: params.NumAugmentations,
			Seed:             seed,
		},
		Results:   results,
		Summary:   report.Summarize(results),
		CreatedAt: core.Now(),
	}
	if p := language.Current(); p != nil {
		run.Params.Language = p.Name()
	}

	s.logger.Info("[AugmentationService] run %s: recipe=%s inputs=%d outputs=%d acceptance=%.3f (%s)",
		run.ID, recipe, run.Summary.Inputs, run.Summary.Outputs, run.Summary.AcceptanceRate,
		time.Since(start).Round(time.Millisecond))

	if req.Persist {
		if s.repo == nil {
			return nil, core.NewResourceError("run store", fmt.Errorf("no database configured"))
		}
		if err := s.repo.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to save run %s: %w", run.ID, err)
		}
	}
	return run, nil
}

// AugmentFile reads the sentences of inputPath, augments them and exports the
// run to outputPath when it is non-empty.
func (s *AugmentationService) AugmentFile(ctx context.Context, inputPath, outputPath string, req AugmentRequest) (*domainAugmentation.Run, error) {
	if s.reader == nil {
		return nil, core.NewResourceError("dataset reader", fmt.Errorf("not configured"))
	}
	sentences, err := s.reader.ReadSentences(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	req.Inputs = sentences

	run, err := s.Augment(ctx, req)
	if err != nil {
		return nil, err
	}

	if outputPath != "" {
		if s.writer == nil {
			return nil, core.NewResourceError("dataset writer", fmt.Errorf("not configured"))
		}
		if err := s.writer.WriteRun(ctx, outputPath, run); err != nil {
			return nil, fmt.Errorf("failed to export run %s: %w", run.ID, err)
		}
	}
	return run, nil
}

// GetRun loads a stored run
func (s *AugmentationService) GetRun(ctx context.Context, id core.RunID) (*domainAugmentation.Run, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return s.repo.GetRun(ctx, id)
}

// ListRuns returns the newest stored run headers
func (s *AugmentationService) ListRuns(ctx context.Context, limit int) ([]*domainAugmentation.Run, error) {
	if s.repo == nil {
		return []*domainAugmentation.Run{}, nil
	}
	return s.repo.ListRuns(ctx, limit)
}

func (s *AugmentationService) resolve(req AugmentRequest) (string, augmentation.RecipeParams, int64) {
	recipe := strings.ToLower(strings.TrimSpace(req.Recipe))
	if recipe == "" {
		recipe = s.defaults.Recipe
	}

	params := augmentation.RecipeParams{
		Alpha:            s.defaults.Alpha,
		NumAugmentations: s.defaults.NumAugmentations,
		NumWordsToSwap:   s.defaults.NumWordsToSwap,
	}
	if req.Alpha != nil {
		params.Alpha = *req.Alpha
	}
	if req.NumAugmentations != nil {
		params.NumAugmentations = *req.NumAugmentations
	}
	if req.NumWordsToSwap != nil {
		params.NumWordsToSwap = *req.NumWordsToSwap
	}

	seed := s.defaults.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed == 0 {
		seed = rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(1<<31-1) + 1
	}
	return recipe, params, seed
}

// resourcesFor fills in the word embedding from the active language provider
// when the embedding recipe needs one and none was configured.
func (s *AugmentationService) resourcesFor(ctx context.Context, recipe string) (augmentation.Resources, error) {
	res := s.resources
	if recipe != augmentation.RecipeEmbedding || res.Embedding != nil {
		return res, nil
	}

	provider := language.Current()
	if provider == nil {
		return res, fmt.Errorf("%w: no active language for the embedding recipe", core.ErrInvalidConfiguration)
	}
	swap, err := provider.WordSwapEmbedding(ctx)
	if err != nil {
		return res, err
	}
	src, ok := swap.(embeddingSource)
	if !ok {
		return res, fmt.Errorf("%w: %s word swap exposes no embedding", core.ErrInvalidConfiguration, provider.Name())
	}
	res.Embedding = src.Embedding()
	if res.Stopwords == nil {
		res.Stopwords = provider.Stopwords()
	}
	return res, nil
}
