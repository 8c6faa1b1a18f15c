package table

import "context"

// Transform is a mutation or derivation applied to a Frame. Transforms may
// modify f in place or return a new Frame.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

// Steps returns the names of the configured transforms in order.
func (p *Pipeline) Steps() []string {
	out := make([]string, len(p.steps))
	for i, t := range p.steps {
		out[i] = t.Name()
	}
	return out
}

func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	var err error
	cur := f
	for _, t := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
