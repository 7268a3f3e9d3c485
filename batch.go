package leimesh

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BuildAll builds one profile per design, at most parallel at a time.
// Profiles are returned in the order of designs. A failing design cancels
// the designs not yet started and its index is named in the error.
func BuildAll(ctx context.Context, designs []Params, parallel int) ([]*Profile, error) {
	if parallel < 1 {
		parallel = 1
	}
	out := make([]*Profile, len(designs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range designs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prof, err := Build(designs[i])
			if err != nil {
				return fmt.Errorf("design %d: %w", i, err)
			}
			out[i] = prof
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
