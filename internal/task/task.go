// Package task runs loader calls in the background and hands out cancellable
// handles for them.
//
// A Handle delivers its completion at most once. Once Cancel has returned the
// completion is guaranteed not to start, even if the underlying operation
// finishes later. Cancelling also cancels the context the operation runs
// with, so an in-flight HTTP request or store query is aborted.
package task

import (
	"context"
	"sync"
	"sync/atomic"
)

// Task is an in-flight operation that can be cancelled.
type Task interface {
	Cancel()
}

// Handle is the Task returned by Go.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	delivered atomic.Bool
	cancelled bool
}

// Go runs op on its own goroutine with a context derived from ctx and passes
// its result to completion, unless the returned handle is cancelled first.
// completion runs on the operation's goroutine.
func Go[T any](ctx context.Context, op func(context.Context) (T, error), completion func(T, error)) *Handle {
	opCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		v, err := op(opCtx)
		h.deliver(func() { completion(v, err) })
	}()
	return h
}

func (h *Handle) deliver(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return
	}
	h.delivered.Store(true)
	fn()
}

// Cancel stops the operation and drops its completion. It is safe to call
// more than once and from inside the completion itself.
func (h *Handle) Cancel() {
	h.cancel()
	if h.delivered.Load() {
		return
	}
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

// Done is closed once the operation returned and its completion, if any,
// has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
