// Package pipeline provides the stage abstraction and the data types that
// flow between capture, sampling, editing and encoding.
package pipeline

import (
	"context"
)

// Stage turns one input into one output. Implementations check ctx between
// units of work and return ErrCancelled when it is done.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc lets a plain function stand in for a Stage, mostly in tests.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute calls f.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
