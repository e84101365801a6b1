package api

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// State is a snapshot of one executor.
type State[T any] struct {
	Data    *T
	Loading bool
	Err     error
}

// Executor performs HTTP calls through a Client and tracks the loading, error
// and data state of the most recently issued one.
//
// Every Trigger takes a generation number. When a call settles its outcome is
// committed only if no newer call has been issued since, so an older response
// arriving late cannot overwrite a newer one.
type Executor[T any] struct {
	client *Client
	logger *zap.Logger

	mu         sync.Mutex
	state      State[T]
	generation uint64
}

// NewExecutor creates an executor bound to client.
func NewExecutor[T any](client *Client) *Executor[T] {
	return &Executor[T]{
		client: client,
		logger: client.logger,
	}
}

// Trigger issues method against path (relative to the client's base URL). body
// is sent only for POST and PATCH. The returned error is also recorded in the
// executor's state when this call is still the latest one.
func (e *Executor[T]) Trigger(ctx context.Context, path, method string, body any) error {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.state.Loading = true
	e.state.Err = nil
	e.mu.Unlock()

	out := new(T)
	decoded, err := e.client.Do(ctx, method, path, body, out)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		e.logger.Debug("Discarding superseded response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", e.generation))
		return err
	}

	e.state.Loading = false
	if err != nil {
		e.state.Err = err
		return err
	}
	if decoded {
		e.state.Data = out
	}
	return nil
}

// State returns a consistent snapshot of loading, error and data.
func (e *Executor[T]) State() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Data returns the last committed response body, or nil.
func (e *Executor[T]) Data() *T {
	return e.State().Data
}

// Loading reports whether the latest issued call is still in flight.
func (e *Executor[T]) Loading() bool {
	return e.State().Loading
}

// Err returns the failure of the latest settled call, or nil.
func (e *Executor[T]) Err() error {
	return e.State().Err
}
