package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"textattack/domain/text"
)

func TestStopwordModification(t *testing.T) {
	c := NewStopwordModification(nil)
	tt := text.New("The fox is under A bridge")

	assert.False(t, c.CanModify(tt, 0), "The")
	assert.True(t, c.CanModify(tt, 1), "fox")
	assert.False(t, c.CanModify(tt, 2), "is")
	assert.False(t, c.CanModify(tt, 3), "under")
	assert.False(t, c.CanModify(tt, 4), "A")
	assert.True(t, c.CanModify(tt, 5), "bridge")
}

func TestStopwordModificationCustomList(t *testing.T) {
	c := NewStopwordModification([]string{"Fox"})
	tt := text.New("the fox")
	assert.True(t, c.CanModify(tt, 0))
	assert.False(t, c.CanModify(tt, 1))
}

func TestRepeatModification(t *testing.T) {
	c := NewRepeatModification()
	orig := text.New("one two three")
	assert.True(t, c.CanModify(orig, 1))

	changed := orig.ReplaceWordAt(1, "deux")
	assert.False(t, c.CanModify(changed, 1))
	assert.True(t, c.CanModify(changed, 0))
	assert.True(t, c.CanModify(changed, 2))
}
