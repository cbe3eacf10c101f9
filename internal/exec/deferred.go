package exec

import (
	"context"

	"github.com/quantaforge/quanta/internal/dataset"
)

// Deferred is the lazy handle supplied for connections declared with
// DeferLoad: a capability holding exactly one operation, Fetch, which
// resolves the reference through the registry only when task logic asks
// for it.
//
// Fetch is idempotent for a given parameterization; callers choose when
// and how often to invoke it. The params argument is an optional
// projection or selection hint passed through to the registry, nil for a
// full load.
type Deferred struct {
	ref   dataset.Ref
	fetch func(ctx context.Context, params any) (any, error)
}

// Ref returns the reference the handle will resolve, without fetching.
func (d *Deferred) Ref() dataset.Ref {
	return d.ref
}

// Fetch resolves the reference. params may be nil.
func (d *Deferred) Fetch(ctx context.Context, params any) (any, error) {
	return d.fetch(ctx, params)
}

// rawAccess lets a registry wrapper expose the unwrapped registry.
// Deferred handles fetch through the raw registry: how often a lazy
// handle is resolved is the task's choice and is not subject to the
// at-most-once tracking applied to eager fetches.
type rawAccess interface {
	Raw() Registry
}

// newDeferred wraps a reference and a registry in a lazy handle.
func newDeferred(ref dataset.Ref, reg Registry) *Deferred {
	if r, ok := reg.(rawAccess); ok {
		reg = r.Raw()
	}
	return &Deferred{
		ref: ref,
		fetch: func(ctx context.Context, params any) (any, error) {
			return reg.Dereference(ctx, ref, params)
		},
	}
}
