package exec

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/resolve"
)

// Runner executes task logic over resolved quanta.
//
// Runners are stateless between quanta and safe for concurrent use;
// distinct quanta may be executed in parallel on the same Runner.
type Runner struct {
	registry Registry
	strategy Strategy
	tokens   TokenGenerator
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStrategy replaces the default execution strategy.
func WithStrategy(s Strategy) RunnerOption {
	return func(r *Runner) {
		if s != nil {
			r.strategy = s
		}
	}
}

// WithTokenGenerator replaces the run token generator. Tests use
// FixedGenerator for deterministic tokens.
func WithTokenGenerator(g TokenGenerator) RunnerOption {
	return func(r *Runner) {
		if g != nil {
			r.tokens = g
		}
	}
}

// NewRunner creates a Runner over the given registry.
func NewRunner(registry Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		strategy: DefaultStrategy{},
		tokens:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result reports one completed quantum execution.
type Result struct {
	RunToken  string
	Quantum   *resolve.Quantum
	Fetched   int // eager dereferences issued
	Persisted int // output references written
}

// Execute runs one quantum through the configured strategy and task
// logic.
//
// Order of operations: fetch (or defer) inputs, invoke task logic,
// validate the returned mapping against the quantum's surviving output
// identifiers, then persist. A task error or an output mismatch aborts
// before any persist call, so a failed invocation never leaves partial
// outputs. After the persist phase the Runner checks that every
// surviving output reference was written exactly once, whichever
// strategy is in use. The quantum is not retained after Execute
// returns.
func (r *Runner) Execute(ctx context.Context, q *resolve.Quantum, bound *connection.Bound, task Task) (*Result, error) {
	token := r.tokens.Generate()
	log := slog.With("run", token, "task", q.Task(), "data_id", q.DataID().String())
	log.Info("executing quantum")

	tracked := &quantumTracker{task: q.Task(), registry: r.registry}

	inputs, err := r.strategy.FetchInputs(ctx, q, bound, tracked)
	if err != nil {
		log.Error("input fetch failed", "error", err)
		return nil, err
	}

	outputs, err := task.Run(ctx, inputs)
	if err != nil {
		log.Error("task logic failed", "error", err)
		return nil, err
	}

	if err := validateOutputs(q, bound, outputs); err != nil {
		log.Error("output validation failed", "error", err)
		return nil, err
	}

	if err := r.strategy.PersistOutputs(ctx, q, bound, tracked, outputs); err != nil {
		log.Error("output persist failed", "error", err)
		return nil, err
	}
	if err := checkPersisted(q, bound, tracked); err != nil {
		log.Error("output persist incomplete", "error", err)
		return nil, err
	}

	result := &Result{
		RunToken:  token,
		Quantum:   q,
		Fetched:   tracked.fetches(),
		Persisted: tracked.persists(),
	}
	log.Info("quantum complete", "fetched", result.Fetched, "persisted", result.Persisted)
	return result, nil
}

// validateOutputs checks the returned mapping against the surviving
// output identifiers: every output with at least one reference must be
// present and nothing else may be.
func validateOutputs(q *resolve.Quantum, bound *connection.Bound, outputs map[string]any) error {
	expected := make(map[string]bool)
	for _, id := range bound.Outputs() {
		if len(q.Refs(id)) > 0 {
			expected[id] = true
		}
	}

	var missing, extra []string
	for id := range expected {
		if _, ok := outputs[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id := range outputs {
		if !expected[id] {
			extra = append(extra, id)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return newOutputMismatch(q.Task(), q.DataID(), missing, extra)
	}
	return nil
}

// checkPersisted verifies that the persist phase wrote every surviving
// output reference. Together with the tracker's repeat rejection this
// holds the exactly-once property over any strategy, not just the
// default one.
func checkPersisted(q *resolve.Quantum, bound *connection.Bound, tracked *quantumTracker) error {
	for _, id := range bound.Outputs() {
		for _, ref := range q.Refs(id) {
			if !tracked.wasPersisted(ref.Key()) {
				return &MissingPersistError{Task: q.Task(), Connection: id, Ref: ref.String()}
			}
		}
	}
	return nil
}

// quantumTracker wraps the registry to enforce the per-quantum traffic
// rules around whichever strategy is in use: eager fetches are
// at-most-once per reference and persists are at-most-once per
// reference, with Execute checking afterwards that every surviving
// output reference was in fact written. Deferred fetches (params != nil
// or issued through a Deferred handle) are exempt: their cadence is the
// caller's choice.
type quantumTracker struct {
	task     string
	registry Registry

	mu        sync.Mutex
	fetched   map[string]bool
	persisted map[string]bool
	nFetches  int
	nPersists int
}

// Dereference implements Registry.
func (t *quantumTracker) Dereference(ctx context.Context, ref dataset.Ref, params any) (any, error) {
	if params == nil {
		t.mu.Lock()
		if t.fetched == nil {
			t.fetched = make(map[string]bool)
		}
		if t.fetched[ref.Key()] {
			t.mu.Unlock()
			return nil, &DoubleFetchError{Task: t.task, Ref: ref.String()}
		}
		t.fetched[ref.Key()] = true
		t.nFetches++
		t.mu.Unlock()
	}
	return t.registry.Dereference(ctx, ref, params)
}

// Persist implements Registry.
func (t *quantumTracker) Persist(ctx context.Context, ref dataset.Ref, value any) error {
	t.mu.Lock()
	if t.persisted == nil {
		t.persisted = make(map[string]bool)
	}
	if t.persisted[ref.Key()] {
		t.mu.Unlock()
		return &DoublePersistError{Task: t.task, Ref: ref.String()}
	}
	t.persisted[ref.Key()] = true
	t.mu.Unlock()

	if err := t.registry.Persist(ctx, ref, value); err != nil {
		return err
	}
	t.mu.Lock()
	t.nPersists++
	t.mu.Unlock()
	return nil
}

func (t *quantumTracker) fetches() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nFetches
}

func (t *quantumTracker) persists() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nPersists
}

func (t *quantumTracker) wasPersisted(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.persisted[key]
}

// Raw exposes the unwrapped registry for deferred handles.
func (t *quantumTracker) Raw() Registry {
	return t.registry
}
