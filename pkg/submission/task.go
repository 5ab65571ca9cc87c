package submission

import (
	"context"
	"sync"
)

// Task runs one function on its own goroutine with a cancellable context.
// The result is available once Done is closed.
type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	result T
	err    error
}

// Start launches fn. Cancelling the parent or calling Cancel cancels the
// context handed to fn.
func Start[T any](parent context.Context, fn func(context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(parent)
	task := &Task[T]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(task.done)
		defer cancel()
		task.result, task.err = fn(ctx)
	}()
	return task
}

// Cancel requests cancellation. It does not wait for fn to return.
func (t *Task[T]) Cancel() {
	t.once.Do(t.cancel)
}

// Done is closed when fn has returned.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result blocks until fn returns and reports its outcome.
func (t *Task[T]) Result() (T, error) {
	<-t.done
	return t.result, t.err
}
