package constraints

import (
	"context"
	"fmt"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// Chain applies constraints in order and stops at the first rejection.
type Chain struct {
	constraints []ports.Constraint
}

func NewChain(cs ...ports.Constraint) *Chain {
	return &Chain{constraints: cs}
}

// Split routes pre-transformation constraints to the transformation and collects
// the rest into a Chain, preserving order.
func Split(list []ports.NamedConstraint) ([]ports.PreTransformationConstraint, *Chain, error) {
	var pre []ports.PreTransformationConstraint
	chain := &Chain{}
	for _, c := range list {
		switch v := c.(type) {
		case ports.PreTransformationConstraint:
			pre = append(pre, v)
		case ports.Constraint:
			chain.constraints = append(chain.constraints, v)
		default:
			return nil, nil, fmt.Errorf("%w: %T is neither a constraint nor a pre-transformation constraint",
				core.ErrInvalidConfiguration, c)
		}
	}
	return pre, chain, nil
}

func (c *Chain) Len() int { return len(c.constraints) }

// Names lists the constraint names in evaluation order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.constraints))
	for i, con := range c.constraints {
		names[i] = con.Name()
	}
	return names
}

// Check runs candidate through every constraint. Each constraint is given either
// original or the candidate's preceding text as reference. rejectedBy names the
// constraint that rejected or failed; it is empty when the candidate is accepted.
func (c *Chain) Check(ctx context.Context, candidate, original *text.AttackedText) (accepted bool, rejectedBy string, err error) {
	for _, con := range c.constraints {
		reference := original
		if !con.CompareAgainstOriginal() {
			if prev := candidate.Previous(); prev != nil {
				reference = prev
			}
		}
		ok, err := con.Check(ctx, candidate, reference)
		if err != nil {
			return false, con.Name(), fmt.Errorf("constraint %s: %w", con.Name(), err)
		}
		if !ok {
			return false, con.Name(), nil
		}
	}
	return true, "", nil
}
