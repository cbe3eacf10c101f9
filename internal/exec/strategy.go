package exec

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/resolve"
)

// Registry is the catalog capability consumed at execution time.
// Dereference resolves a reference to its value; params is an optional
// projection or selection hint and is nil for a full load. Persist
// stores a value under its reference. Implementations must be safe for
// concurrent use: fetches for independent inputs and persists for
// independent outputs are issued concurrently.
type Registry interface {
	Dereference(ctx context.Context, ref dataset.Ref, params any) (any, error)
	Persist(ctx context.Context, ref dataset.Ref, value any) error
}

// Strategy is the override point of the execution engine: it decides
// what, and in what shape, is fetched and persisted around the task
// logic invocation. The Runner supplies the default implementation and
// enforces the output and fetch invariants around whichever strategy is
// in use.
type Strategy interface {
	// FetchInputs materializes the quantum's input bindings.
	FetchInputs(ctx context.Context, q *resolve.Quantum, bound *connection.Bound, reg Registry) (Inputs, error)

	// PersistOutputs stores the validated task outputs. outputs is keyed
	// by connection identifier and values line up with the quantum's
	// reference lists.
	PersistOutputs(ctx context.Context, q *resolve.Quantum, bound *connection.Bound, reg Registry, outputs map[string]any) error
}

// DefaultStrategy fetches every non-deferred input concurrently, wraps
// deferred inputs in lazy handles, and persists outputs concurrently.
type DefaultStrategy struct{}

// FetchInputs implements Strategy.
func (DefaultStrategy) FetchInputs(ctx context.Context, q *resolve.Quantum, bound *connection.Bound, reg Registry) (Inputs, error) {
	in := Inputs{
		quantum:  q,
		values:   make(map[string][]any),
		deferred: make(map[string][]*Deferred),
	}

	type valueSlot struct {
		identifier string
		index      int
	}
	type fetchJob struct {
		ref   dataset.Ref
		slots []valueSlot
	}
	var jobs []fetchJob
	jobIndex := make(map[string]int)

	for _, id := range q.Connections() {
		conn, ok := bound.Get(id)
		if !ok || !conn.Role.IsInput() {
			continue
		}
		refs := q.Refs(id)
		if conn.DeferLoad {
			handles := make([]*Deferred, len(refs))
			for i, ref := range refs {
				handles[i] = newDeferred(ref, reg)
			}
			in.deferred[id] = handles
			continue
		}
		in.values[id] = make([]any, len(refs))
		for i, ref := range refs {
			// A reference shared by several connections is fetched once
			// and bound to every slot that wants it.
			j, ok := jobIndex[ref.Key()]
			if !ok {
				j = len(jobs)
				jobIndex[ref.Key()] = j
				jobs = append(jobs, fetchJob{ref: ref})
			}
			jobs[j].slots = append(jobs[j].slots, valueSlot{identifier: id, index: i})
		}
	}

	// Independent reads, issued concurrently.
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, job := range jobs {
		job := job
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := reg.Dereference(ctx, job.ref, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("fetch %s for connection %s: %w", job.ref, job.slots[0].identifier, err))
				return
			}
			for _, slot := range job.slots {
				in.values[slot.identifier][slot.index] = value
			}
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		return Inputs{}, errors.Join(errs...)
	}
	return in, nil
}

// PersistOutputs implements Strategy. Outputs for different identifiers
// are persisted concurrently; the call returns only when all have
// completed or failed.
func (DefaultStrategy) PersistOutputs(ctx context.Context, q *resolve.Quantum, bound *connection.Bound, reg Registry, outputs map[string]any) error {
	type persistJob struct {
		identifier string
		ref        dataset.Ref
		value      any
	}
	var jobs []persistJob

	for id, value := range outputs {
		refs := q.Refs(id)
		conn, _ := bound.Get(id)
		if conn.Multiple {
			values, ok := value.([]any)
			if !ok || len(values) != len(refs) {
				return fmt.Errorf("output %s: multiple connection needs %d values, got %T", id, len(refs), value)
			}
			for i, ref := range refs {
				jobs = append(jobs, persistJob{identifier: id, ref: ref, value: values[i]})
			}
			continue
		}
		jobs = append(jobs, persistJob{identifier: id, ref: refs[0], value: value})
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, job := range jobs {
		job := job
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reg.Persist(ctx, job.ref, job.value); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("persist %s for connection %s: %w", job.ref, job.identifier, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
