package ports

import (
	"context"

	"textattack/domain/augmentation"
)

// Augmenter turns one input string into augmented variants.
type Augmenter interface {
	Augment(ctx context.Context, raw string) ([]string, error)
	// AugmentWithAudit returns the outputs together with every dropped candidate.
	AugmentWithAudit(ctx context.Context, raw string) (*augmentation.Result, error)
}
