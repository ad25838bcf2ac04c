package ports

import (
	"context"
	"math/rand"

	"textattack/domain/text"
)

// TransformRequest carries the per-call inputs of a transformation.
type TransformRequest struct {
	// Budget is the number of single-word edits each candidate accumulates.
	Budget int
	// Pre restricts which word positions may be touched.
	Pre []PreTransformationConstraint
	// RNG drives index order and edit choice. Not safe for concurrent use.
	RNG *rand.Rand
}

// Transformation produces candidate perturbations of a text.
// Every candidate records the text it was derived from and the positions
// touched by its last step.
type Transformation interface {
	Name() string
	Transform(ctx context.Context, t *text.AttackedText, req TransformRequest) ([]*text.AttackedText, error)
}
