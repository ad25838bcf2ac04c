package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic augmentation
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for one input of one run.
	// The same (runID, recipe, inputKey, baseSeed) always yields the same sequence,
	// so a batch produces identical outputs regardless of worker scheduling.
	Stream(ctx context.Context, runID, recipe, inputKey string, baseSeed int64) (*rand.Rand, error)

	// ValidateSeed ensures the seed produces expected deterministic results
	ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error
}
