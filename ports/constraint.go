package ports

import (
	"context"

	"textattack/domain/text"
)

// NamedConstraint is anything that can be placed in an augmenter's constraint list.
// Concrete values are either a Constraint or a PreTransformationConstraint.
type NamedConstraint interface {
	Name() string
}

// Constraint decides whether a transformed candidate is acceptable.
type Constraint interface {
	NamedConstraint

	// CompareAgainstOriginal selects the reference the augmenter passes to Check:
	// the original input (true) or the candidate's preceding text (false).
	CompareAgainstOriginal() bool

	// Check reports whether candidate is acceptable relative to reference.
	// An error is fatal for the augmentation call.
	Check(ctx context.Context, candidate, reference *text.AttackedText) (bool, error)
}

// PreTransformationConstraint restricts the positions a transformation may modify.
type PreTransformationConstraint interface {
	NamedConstraint
	CanModify(t *text.AttackedText, index int) bool
}
