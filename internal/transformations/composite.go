package transformations

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// Composite pools the candidates of several transformations and shuffles them,
// so capping the result does not favour the first member.
type Composite struct {
	members []ports.Transformation
}

func NewComposite(members ...ports.Transformation) (*Composite, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: composite transformation needs at least one member", core.ErrInvalidConfiguration)
	}
	return &Composite{members: members}, nil
}

func (c *Composite) Name() string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name()
	}
	return "composite(" + strings.Join(names, ",") + ")"
}

func (c *Composite) Transform(ctx context.Context, t *text.AttackedText, req ports.TransformRequest) ([]*text.AttackedText, error) {
	if req.RNG == nil {
		req.RNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var out []*text.AttackedText
	for _, m := range c.members {
		cands, err := m.Transform(ctx, t, req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name(), err)
		}
		out = append(out, cands...)
	}
	req.RNG.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}
