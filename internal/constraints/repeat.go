package constraints

import "textattack/domain/text"

// RepeatModification forbids modifying a position that has already been modified.
type RepeatModification struct{}

func NewRepeatModification() *RepeatModification { return &RepeatModification{} }

func (c *RepeatModification) Name() string { return "repeat_modification" }

func (c *RepeatModification) CanModify(t *text.AttackedText, i int) bool {
	return !t.IsModified(i)
}
