// Package transformations produces perturbed candidates of an AttackedText.
//
// Every word-level transformation here is driven by the same stepwise engine: one
// candidate chain per modifiable start position (visited in random order), each chain
// extended with further random single-word edits until the budget is spent.
package transformations

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// editor derives a text with position i edited, or returns nil when no edit applies there.
type editor func(t *text.AttackedText, i int, env *stepEnv) *text.AttackedText

type stepEnv struct {
	rng *rand.Rand
	pre []ports.PreTransformationConstraint
}

func (e *stepEnv) canModify(t *text.AttackedText, i int) bool {
	for _, c := range e.pre {
		if !c.CanModify(t, i) {
			return false
		}
	}
	return true
}

// modifiable lists the positions of t every pre-transformation constraint allows, in random order.
func (e *stepEnv) modifiable(t *text.AttackedText) []int {
	var out []int
	for _, i := range e.rng.Perm(t.NumWords()) {
		if e.canModify(t, i) {
			out = append(out, i)
		}
	}
	return out
}

func newStepEnv(req ports.TransformRequest) (*stepEnv, error) {
	if req.Budget < 1 {
		return nil, fmt.Errorf("%w: perturbation budget must be at least 1, got %d", core.ErrInvalidRecipeParams, req.Budget)
	}
	rng := req.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &stepEnv{rng: rng, pre: req.Pre}, nil
}

// stepwise runs edit over t and returns one candidate per start position that accepted an edit.
func stepwise(ctx context.Context, t *text.AttackedText, req ports.TransformRequest, edit editor) ([]*text.AttackedText, error) {
	env, err := newStepEnv(req)
	if err != nil {
		return nil, err
	}

	var out []*text.AttackedText
	for _, start := range env.modifiable(t) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := edit(t, start, env)
		if cur == nil {
			continue
		}
		for step := 1; step < req.Budget; step++ {
			next := extend(cur, env, edit)
			if next == nil {
				break
			}
			cur = next
		}
		out = append(out, cur)
	}
	return out, nil
}

// extend applies one more edit at a random modifiable position of cur.
func extend(cur *text.AttackedText, env *stepEnv, edit editor) *text.AttackedText {
	for _, i := range env.modifiable(cur) {
		if next := edit(cur, i, env); next != nil {
			return next
		}
	}
	return nil
}
