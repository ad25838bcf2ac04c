package transformations

import (
	"context"

	"textattack/domain/text"
	"textattack/ports"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// charEdit returns w with one character-level edit applied, or nil when none applies.
type charEdit func(w []rune, env *stepEnv) []rune

// CharacterSwap applies one character edit to a word per step.
type CharacterSwap struct {
	name string
	edit charEdit
}

func (c *CharacterSwap) Name() string { return c.name }

func (c *CharacterSwap) Transform(ctx context.Context, t *text.AttackedText, req ports.TransformRequest) ([]*text.AttackedText, error) {
	return stepwise(ctx, t, req, c.word)
}

func (c *CharacterSwap) word(t *text.AttackedText, i int, env *stepEnv) *text.AttackedText {
	original := t.WordAt(i)
	edited := c.edit([]rune(original), env)
	if edited == nil || string(edited) == original {
		return nil
	}
	return t.ReplaceWordAt(i, string(edited))
}

// NewNeighboringCharacterSwap swaps two adjacent characters.
func NewNeighboringCharacterSwap() *CharacterSwap {
	return &CharacterSwap{name: "neighboring_character_swap", edit: func(w []rune, env *stepEnv) []rune {
		if len(w) < 2 {
			return nil
		}
		for _, j := range env.rng.Perm(len(w) - 1) {
			if w[j] != w[j+1] {
				out := append([]rune(nil), w...)
				out[j], out[j+1] = out[j+1], out[j]
				return out
			}
		}
		return nil
	}}
}

// NewRandomCharacterSubstitution replaces one character with a different random letter.
func NewRandomCharacterSubstitution() *CharacterSwap {
	return &CharacterSwap{name: "random_character_substitution", edit: func(w []rune, env *stepEnv) []rune {
		if len(w) == 0 {
			return nil
		}
		j := env.rng.Intn(len(w))
		r := randomLetter(env, w[j])
		out := append([]rune(nil), w...)
		out[j] = r
		return out
	}}
}

// NewRandomCharacterDeletion drops one character. Single-character words are left alone.
func NewRandomCharacterDeletion() *CharacterSwap {
	return &CharacterSwap{name: "random_character_deletion", edit: func(w []rune, env *stepEnv) []rune {
		if len(w) < 2 {
			return nil
		}
		j := env.rng.Intn(len(w))
		out := make([]rune, 0, len(w)-1)
		out = append(out, w[:j]...)
		return append(out, w[j+1:]...)
	}}
}

// NewRandomCharacterInsertion inserts a random letter at a random position.
func NewRandomCharacterInsertion() *CharacterSwap {
	return &CharacterSwap{name: "random_character_insertion", edit: func(w []rune, env *stepEnv) []rune {
		if len(w) == 0 {
			return nil
		}
		j := env.rng.Intn(len(w) + 1)
		out := make([]rune, 0, len(w)+1)
		out = append(out, w[:j]...)
		out = append(out, rune(letters[env.rng.Intn(len(letters))]))
		return append(out, w[j:]...)
	}}
}

func randomLetter(env *stepEnv, not rune) rune {
	for {
		r := rune(letters[env.rng.Intn(len(letters))])
		if r != not {
			return r
		}
	}
}
