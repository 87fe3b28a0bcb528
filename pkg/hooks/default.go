package hooks

import "context"

var defaultManager = NewManager()

// Default returns the process-wide Manager. Plugins register with it from an
// init function, the way database/sql drivers do.
func Default() *Manager {
	return defaultManager
}

// Register adds plugin to the default Manager.
func Register(plugin any) error {
	return defaultManager.Register(plugin)
}

// Unregister removes plugin from the default Manager.
func Unregister(plugin any) bool {
	return defaultManager.Unregister(plugin)
}

// RunTask runs fn as a task on the default Manager.
func RunTask(ctx context.Context, fn func(ctx context.Context) error) error {
	return defaultManager.RunTask(ctx, fn)
}
