// Package syncutil provides a context-aware mutex.
//
// Dataset switches reload and retrain the model, which can take a while on
// large files. Serializing them behind a lock that honors the request
// context lets a waiting caller give up instead of queueing forever.
package syncutil

import "context"

// ContextMutex is a mutex implemented over a buffered channel, allowing
// select{} with a context cancellation channel.
type ContextMutex struct {
	ch chan struct{}
}

// NewContextMutex creates a new unlocked mutex.
func NewContextMutex() *ContextMutex {
	m := &ContextMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{} // Start unlocked.
	return m
}

// Lock acquires the mutex, respecting context cancellation.
// On success, returns an unlock function and nil error. The caller MUST call
// the unlock function when done.
// On context cancellation, returns nil and the context error.
func (m *ContextMutex) Lock(ctx context.Context) (func(), error) {
	select {
	case <-m.ch:
		return func() { m.ch <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
