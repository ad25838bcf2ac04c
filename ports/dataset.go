package ports

import (
	"context"

	"textattack/domain/augmentation"
)

// DatasetReader loads input sentences from a file
type DatasetReader interface {
	ReadSentences(ctx context.Context, path string) ([]string, error)
}

// DatasetWriter exports an augmented run to a file
type DatasetWriter interface {
	WriteRun(ctx context.Context, path string, run *augmentation.Run) error
}
