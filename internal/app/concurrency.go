package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// outcome is the result of applying a function to one item.
type outcome[T any] struct {
	Value T
	Err   error
}

// mapLimit applies fn to every item with at most limit calls in flight and
// returns the outcomes in item order. One failure never cancels the rest.
// A limit below one means no bound.
func mapLimit[In, Out any](
	ctx context.Context,
	limit int,
	items []In,
	fn func(context.Context, In) (Out, error),
) []outcome[Out] {
	out := make([]outcome[Out], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			v, err := fn(ctx, item)
			out[i] = outcome[Out]{Value: v, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return out
}
