package ports

import (
	"context"

	"textattack/domain/text"
)

// LanguageModel scores the word at a position in each of several texts.
type LanguageModel interface {
	// LogProbsAt returns one log-probability per input text, in input order,
	// for the word at index. Implementations must return exactly len(texts) scores.
	LogProbsAt(ctx context.Context, texts []*text.AttackedText, index int) ([]float64, error)
}
