package hooks

import (
	"context"
	"errors"
	"fmt"
)

// ExitError asks the program to exit with Code. ExitError with code 0 is the
// only error that ends a task successfully; a nil *ExitError counts as failed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// failed reports whether err ends a task unsuccessfully.
func failed(err error) bool {
	if err == nil {
		return false
	}
	var exit *ExitError
	if errors.As(err, &exit) && exit != nil {
		return exit.Code != 0
	}
	return true
}

// RunTask runs fn as a task: task_start is invoked first, then fn, and
// task_stop is invoked on every way out of fn, panics included. A
// task_start error aborts before fn runs. The error returned joins the error
// of fn with the error of task_stop; a panic in fn is re-raised after
// task_stop ran.
func (m *Manager) RunTask(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := m.StartTask(ctx); err != nil {
		return err
	}

	taskFailed := true
	defer func() {
		// task_stop must run even when ctx was canceled by the task.
		if stopErr := m.StopTask(context.WithoutCancel(ctx), taskFailed); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}()

	err = fn(ctx)
	taskFailed = failed(err)
	return err
}
