// Package rng derives deterministic random streams for augmentation runs.
package rng

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/zeebo/blake3"

	"textattack/ports"
)

// Adapter implements ports.RNGPort
type Adapter struct{}

var _ ports.RNGPort = (*Adapter)(nil)

func New() *Adapter { return &Adapter{} }

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream hashes runID, recipe, inputKey and baseSeed into the seed of a fresh generator.
// Empty parts still contribute, so ("a", "") and ("", "a") give different streams.
func (a *Adapter) Stream(ctx context.Context, runID, recipe, inputKey string, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(DeriveSeed(baseSeed, runID, recipe, inputKey))), nil
}

// ValidateSeed checks that the first len(expected) Float64 draws of the seeded stream match.
func (a *Adapter) ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error {
	r, err := a.SeededStream(ctx, name, seed)
	if err != nil {
		return err
	}
	for i, want := range expected {
		if got := r.Float64(); math.Abs(got-want) > 1e-12 {
			return fmt.Errorf("seed %d for %s: draw %d is %v, expected %v", seed, name, i, got, want)
		}
	}
	return nil
}

// DeriveSeed mixes a base seed with labels through BLAKE3.
func DeriveSeed(base int64, parts ...string) int64 {
	h := blake3.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	_, _ = h.Write(buf[:])
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return int64(binary.LittleEndian.Uint64(sum[:8]) &^ (1 << 63))
}
