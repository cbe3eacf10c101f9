package resolve

import (
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/dimension"
)

// Quantum is one resolved unit of work: a fixed assignment of values to
// the task's dimensions plus, for every surviving connection, the ordered
// references that satisfy it.
//
// Quanta are immutable once emitted by the Resolver and carry no state
// across executions; the execution layer discards them when done.
type Quantum struct {
	task   string
	dataID dimension.DataID
	order  []string
	refs   map[string][]dataset.Ref
}

// newQuantum builds a Quantum, copying the reference lists so later
// mutation of the inputs cannot reach the emitted value.
func newQuantum(task string, dataID dimension.DataID, order []string, refs map[string][]dataset.Ref) *Quantum {
	q := &Quantum{
		task:   task,
		dataID: dataID,
		order:  make([]string, 0, len(order)),
		refs:   make(map[string][]dataset.Ref, len(refs)),
	}
	for _, id := range order {
		list, ok := refs[id]
		if !ok {
			continue
		}
		copied := make([]dataset.Ref, len(list))
		copy(copied, list)
		q.order = append(q.order, id)
		q.refs[id] = copied
	}
	return q
}

// Task returns the label of the task the quantum belongs to.
func (q *Quantum) Task() string {
	return q.task
}

// DataID returns the task-dimension value assignment of the quantum.
func (q *Quantum) DataID() dimension.DataID {
	return q.dataID
}

// Key returns the canonical data ID key, the stable sort key for quanta.
func (q *Quantum) Key() string {
	return q.dataID.CanonicalKey()
}

// Connections returns the connection identifiers with references, in
// declaration order.
func (q *Quantum) Connections() []string {
	out := make([]string, len(q.order))
	copy(out, q.order)
	return out
}

// Refs returns the references resolved for a connection identifier. The
// returned slice is a copy.
func (q *Quantum) Refs(identifier string) []dataset.Ref {
	list, ok := q.refs[identifier]
	if !ok {
		return nil
	}
	out := make([]dataset.Ref, len(list))
	copy(out, list)
	return out
}

// Ref returns the single reference of a non-multiple connection. The
// second return is false when the connection has no or several
// references.
func (q *Quantum) Ref(identifier string) (dataset.Ref, bool) {
	list := q.refs[identifier]
	if len(list) != 1 {
		return dataset.Ref{}, false
	}
	return list[0], true
}
