package ports

import (
	"context"

	"textattack/domain/augmentation"
	"textattack/domain/core"
)

// AugmentationRepository persists augmentation runs
type AugmentationRepository interface {
	SaveRun(ctx context.Context, run *augmentation.Run) error
	// GetRun returns core.ErrRunNotFound when no run has the id.
	GetRun(ctx context.Context, id core.RunID) (*augmentation.Run, error)
	// ListRuns returns run headers (no results) newest first.
	ListRuns(ctx context.Context, limit int) ([]*augmentation.Run, error)
}
