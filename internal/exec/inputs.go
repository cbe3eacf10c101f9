package exec

import (
	"context"

	"github.com/quantaforge/quanta/internal/resolve"
)

// Inputs is the identifier-keyed binding handed to task logic: eager
// values for ordinary connections, lazy handles for deferred ones.
//
// Value ordering follows the quantum's reference ordering, so a multiple
// connection's values line up with Quantum.Refs of the same identifier.
type Inputs struct {
	quantum  *resolve.Quantum
	values   map[string][]any
	deferred map[string][]*Deferred
}

// Quantum returns the quantum the inputs were materialized for.
func (in Inputs) Quantum() *resolve.Quantum {
	return in.quantum
}

// Value returns the eagerly fetched value of a non-multiple connection.
// The second return is false when the connection is absent, deferred, or
// multiple.
func (in Inputs) Value(identifier string) (any, bool) {
	list, ok := in.values[identifier]
	if !ok || len(list) != 1 {
		return nil, false
	}
	return list[0], true
}

// Values returns all eagerly fetched values of a connection in reference
// order.
func (in Inputs) Values(identifier string) ([]any, bool) {
	list, ok := in.values[identifier]
	if !ok {
		return nil, false
	}
	out := make([]any, len(list))
	copy(out, list)
	return out, true
}

// Deferred returns the lazy handle of a non-multiple deferred
// connection.
func (in Inputs) Deferred(identifier string) (*Deferred, bool) {
	list, ok := in.deferred[identifier]
	if !ok || len(list) != 1 {
		return nil, false
	}
	return list[0], true
}

// DeferredList returns all lazy handles of a deferred connection in
// reference order.
func (in Inputs) DeferredList(identifier string) ([]*Deferred, bool) {
	list, ok := in.deferred[identifier]
	if !ok {
		return nil, false
	}
	out := make([]*Deferred, len(list))
	copy(out, list)
	return out, true
}

// Task is the user-supplied logic invoked once per quantum. The returned
// mapping must cover exactly the surviving declared output identifiers;
// extra or missing keys are a contract violation and nothing is
// persisted.
type Task interface {
	Run(ctx context.Context, in Inputs) (map[string]any, error)
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func(ctx context.Context, in Inputs) (map[string]any, error)

// Run implements Task.
func (f TaskFunc) Run(ctx context.Context, in Inputs) (map[string]any, error) {
	return f(ctx, in)
}
