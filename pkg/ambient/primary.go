package ambient

import "context"

type primaryKey struct{}

// WithPrimary marks ctx as the primary execution of the process, the one
// allowed to publish its trace context into the process environment.
// Programs call it once, on the context their main goroutine runs with.
func WithPrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryKey{}, true)
}

// AsWorker drops the primary role from ctx while keeping everything else.
func AsWorker(ctx context.Context) context.Context {
	if !IsPrimary(ctx) {
		return ctx
	}
	return context.WithValue(ctx, primaryKey{}, false)
}

// IsPrimary reports whether ctx belongs to the primary execution.
// Unmarked contexts are workers.
func IsPrimary(ctx context.Context) bool {
	primary, _ := ctx.Value(primaryKey{}).(bool)
	return primary
}
