package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/dimension"
)

// Registry is the catalog query capability the Resolver consumes: given
// a dataset type name and the axes references must cover, return the
// matching references. Implementations must be safe for concurrent use;
// resolution is read-only against the registry.
type Registry interface {
	QueryDatasets(ctx context.Context, typeName dataset.TypeName, dims dimension.Set) ([]dataset.Ref, error)
}

// Resolver computes executable quanta for one bound connection set.
type Resolver struct {
	registry Registry
	workers  int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkers sets the candidate worker pool size.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		r.workers = n
	}
}

// New creates a Resolver over the given registry.
func New(registry Registry, opts ...Option) *Resolver {
	r := &Resolver{registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one resolution run.
//
// Quanta holds the surviving quanta in stable canonical-key order.
// Failures holds the per-candidate hard failures (missing prerequisites);
// these candidates' siblings are unaffected. Dropped counts candidates
// discarded for ordinary-input shortfalls, which are logged but never
// escalated.
type Result struct {
	Quanta   []*Quantum
	Failures []*MissingPrerequisiteError
	Dropped  int
}

// Err joins the per-candidate hard failures into a single error, or
// returns nil when every candidate either survived or was dropped.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// candidate is one prospective quantum during resolution.
type candidate struct {
	dataID dimension.DataID
	refs   map[string][]dataset.Ref
}

// Resolve computes the quanta for bound against the registry, applying
// the optional adjustment hook per candidate.
//
// The returned error is reserved for faults that invalidate the whole
// run: registry query errors, malformed output declarations, and
// adjustment contract violations. Per-candidate outcomes, including hard
// prerequisite failures, are reported through the Result.
func (r *Resolver) Resolve(ctx context.Context, bound *connection.Bound, adjuster Adjuster) (*Result, error) {
	taskDims := bound.Dimensions()

	// Synthesized output references are projections of the candidate
	// data ID, which only works when the output axes are task axes.
	for _, id := range bound.Outputs() {
		conn, _ := bound.Get(id)
		if !conn.Dimensions.SubsetOf(taskDims) {
			return nil, &connection.ConfigurationError{
				Task:       bound.Task(),
				Connection: id,
				Message: fmt.Sprintf("output dimensions %s are not a subset of task dimensions %s",
					conn.Dimensions, taskDims),
			}
		}
	}

	candidates, err := r.gather(ctx, bound)
	if err != nil {
		return nil, err
	}
	r.synthesizeOutputs(bound, candidates)

	// Stable candidate order before fan-out so results line up by index.
	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	type outcome struct {
		quantum *Quantum
		failure *MissingPrerequisiteError
		dropped bool
		fatal   error
	}
	outcomes := make([]outcome, len(keys))

	pool := newDispatcher(r.workers)
	var wg sync.WaitGroup
	for i, key := range keys {
		i, cand := i, candidates[key]
		wg.Add(1)
		pool.submit(func() {
			defer wg.Done()
			q, failure, fatal := r.finish(bound, cand, adjuster)
			outcomes[i] = outcome{quantum: q, failure: failure, dropped: q == nil && failure == nil && fatal == nil, fatal: fatal}
		})
	}
	wg.Wait()
	pool.stop()

	result := &Result{}
	for _, o := range outcomes {
		switch {
		case o.fatal != nil:
			return nil, o.fatal
		case o.failure != nil:
			result.Failures = append(result.Failures, o.failure)
		case o.dropped:
			result.Dropped++
		default:
			result.Quanta = append(result.Quanta, o.quantum)
		}
	}

	slog.Info("resolution complete",
		"task", bound.Task(),
		"quanta", len(result.Quanta),
		"dropped", result.Dropped,
		"failed", len(result.Failures),
	)
	return result, nil
}

// gather queries the registry once per input and prerequisite connection
// and groups the references into candidates keyed by the canonical
// projection of their data IDs onto the task dimensions.
//
// References whose data IDs cover the task dimensions create candidates.
// References over coarser axes (a connection whose dimensions are a
// proper subset of the task's, a per-detector flat joining per-visit
// work, say) cannot name a candidate on their own; they are attached in
// a second pass to every candidate whose data ID agrees on the shared
// axes, fanning one coarse reference out to many quanta.
func (r *Resolver) gather(ctx context.Context, bound *connection.Bound) (map[string]*candidate, error) {
	taskDims := bound.Dimensions()
	candidates := make(map[string]*candidate)

	inputs := append(bound.Inputs(), bound.PrerequisiteInputs()...)
	queried := make(map[string][]dataset.Ref, len(inputs))
	for _, id := range inputs {
		conn, _ := bound.Get(id)
		refs, err := r.registry.QueryDatasets(ctx, conn.TypeName, conn.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("query datasets for connection %s (type=%s): %w", id, conn.TypeName, err)
		}

		// Deterministic per-connection order, duplicates removed.
		sort.Slice(refs, func(a, b int) bool { return refs[a].Key() < refs[b].Key() })
		deduped := refs[:0]
		seen := make(map[string]bool, len(refs))
		for _, ref := range refs {
			if seen[ref.Key()] {
				continue
			}
			seen[ref.Key()] = true
			deduped = append(deduped, ref)
		}
		queried[id] = deduped
	}

	// Pass 1: covering references name candidates.
	var coarse []struct {
		id  string
		ref dataset.Ref
	}
	for _, id := range inputs {
		for _, ref := range queried[id] {
			proj, ok := ref.DataID.Project(taskDims)
			if !ok {
				coarse = append(coarse, struct {
					id  string
					ref dataset.Ref
				}{id, ref})
				continue
			}
			key := proj.CanonicalKey()
			cand, exists := candidates[key]
			if !exists {
				cand = &candidate{dataID: proj, refs: make(map[string][]dataset.Ref)}
				candidates[key] = cand
			}
			cand.refs[id] = append(cand.refs[id], ref)
		}
	}

	// Pass 2: coarse references join every candidate that agrees on
	// the axes they do carry.
	for _, c := range coarse {
		matched := false
		for _, cand := range candidates {
			if agreesOnSharedAxes(cand.dataID, c.ref.DataID) {
				cand.refs[c.id] = append(cand.refs[c.id], c.ref)
				matched = true
			}
		}
		if !matched {
			slog.Debug("reference matches no candidate",
				"task", bound.Task(), "connection", c.id, "ref", c.ref.String())
		}
	}
	return candidates, nil
}

// agreesOnSharedAxes reports whether the candidate data ID carries the
// same value as ref's data ID on every axis ref has.
func agreesOnSharedAxes(cand, ref dimension.DataID) bool {
	for axis, v := range ref {
		if cand[axis] != v {
			return false
		}
	}
	return true
}

// synthesizeOutputs predicts one output reference per output connection
// for every candidate. Output references carry no registry ID until they
// are persisted.
func (r *Resolver) synthesizeOutputs(bound *connection.Bound, candidates map[string]*candidate) {
	outputs := bound.Outputs()
	for _, cand := range candidates {
		for _, id := range outputs {
			conn, _ := bound.Get(id)
			proj, _ := cand.dataID.Project(conn.Dimensions)
			cand.refs[id] = []dataset.Ref{{Type: conn.TypeName, DataID: proj}}
		}
	}
}

// finish adjusts one candidate and applies the role invariants. Exactly
// one of the three returns is set: a surviving quantum, a hard
// prerequisite failure, or a fatal resolution error. All nil means the
// candidate was dropped.
func (r *Resolver) finish(bound *connection.Bound, cand *candidate, adjuster Adjuster) (*Quantum, *MissingPrerequisiteError, error) {
	offered := Candidate{
		Task:   bound.Task(),
		DataID: dimension.NewDataID(cand.dataID),
		Refs:   copyRefs(cand.refs),
	}
	adjusted, err := applyAdjustment(adjuster, offered)
	if err != nil {
		if IsAdjustmentError(err) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("adjust quantum %s (task=%s): %w", cand.dataID, bound.Task(), err)
	}

	for _, id := range bound.PrerequisiteInputs() {
		if len(adjusted[id]) == 0 {
			return nil, &MissingPrerequisiteError{
				Task:       bound.Task(),
				Connection: id,
				DataID:     cand.dataID,
			}, nil
		}
	}

	for _, id := range bound.QuantumConnections() {
		conn, _ := bound.Get(id)
		if !conn.Multiple && len(adjusted[id]) != 1 {
			slog.Debug("candidate dropped",
				"task", bound.Task(),
				"data_id", cand.dataID.String(),
				"connection", id,
				"refs", len(adjusted[id]),
			)
			return nil, nil, nil
		}
	}

	return newQuantum(bound.Task(), cand.dataID, bound.QuantumConnections(), adjusted), nil, nil
}

// copyRefs deep-copies per-connection reference lists so adjustment
// hooks cannot reach resolver state.
func copyRefs(refs map[string][]dataset.Ref) map[string][]dataset.Ref {
	out := make(map[string][]dataset.Ref, len(refs))
	for id, list := range refs {
		copied := make([]dataset.Ref, len(list))
		copy(copied, list)
		out[id] = copied
	}
	return out
}
