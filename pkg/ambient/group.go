package ambient

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group runs worker goroutines that inherit the caller's ambient trace
// context but never the primary role.
type Group struct {
	g   *errgroup.Group
	ctx context.Context
}

// NewGroup returns a Group whose workers run with a context derived from ctx.
// That context is canceled when a worker fails or Wait returns.
func NewGroup(ctx context.Context) *Group {
	g, gctx := errgroup.WithContext(ctx)
	return &Group{g: g, ctx: AsWorker(gctx)}
}

// SetLimit bounds the number of workers running at once. A negative n removes the bound.
func (g *Group) SetLimit(n int) {
	g.g.SetLimit(n)
}

// Go runs fn in a new goroutine with the group's worker context.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.g.Go(func() error {
		return fn(g.ctx)
	})
}

// Wait blocks until every worker returns and reports the first error.
func (g *Group) Wait() error {
	return g.g.Wait()
}
