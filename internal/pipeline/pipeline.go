// Package pipeline models an ordered collection of task definitions and
// the data-dependency checks between them.
//
// A pipeline is correctly ordered when every dataset type produced by a
// task is consumed only by tasks appearing after the producer. Order
// re-arranges a pipeline to satisfy that property while preserving the
// original relative order of the tasks wherever possible.
package pipeline

import (
	"fmt"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/taskconfig"
)

// TaskDef describes one task in a pipeline: the implementation name, a
// pipeline-unique label, the connection declaration and the task's
// configuration.
type TaskDef struct {
	TaskName    string
	Label       string
	Connections *connection.Declaration
	Config      *taskconfig.Config
}

// Bind binds the task's declaration against its configuration. The
// optional trimmer is the task implementation's bind-time narrowing
// hook.
func (t *TaskDef) Bind(trimmer connection.Trimmer) (*connection.Bound, error) {
	return t.Connections.Bind(t.Config.BindConfig(), trimmer)
}

// Pipeline is an ordered list of task definitions.
type Pipeline []*TaskDef

// Labels returns the task labels in pipeline order.
func (p Pipeline) Labels() []string {
	out := make([]string, len(p))
	for i, t := range p {
		out[i] = t.Label
	}
	return out
}

// taskIO is the resolved dataset type names one task consumes and
// produces, computed from the declaration and configuration without a
// trimmer (ordering considers the full declared shape).
type taskIO struct {
	inputs  map[dataset.TypeName]bool
	outputs map[dataset.TypeName]bool
}

// resolveIO computes per-task input and output dataset type names.
func resolveIO(p Pipeline) ([]taskIO, error) {
	ios := make([]taskIO, len(p))
	for i, t := range p {
		bound, err := t.Bind(nil)
		if err != nil {
			return nil, fmt.Errorf("bind task %s: %w", t.Label, err)
		}
		io := taskIO{
			inputs:  make(map[dataset.TypeName]bool),
			outputs: make(map[dataset.TypeName]bool),
		}
		for _, id := range append(bound.Inputs(), bound.PrerequisiteInputs()...) {
			conn, _ := bound.Get(id)
			io.inputs[conn.TypeName] = true
		}
		for _, id := range bound.Outputs() {
			conn, _ := bound.Get(id)
			io.outputs[conn.TypeName] = true
		}
		ios[i] = io
	}
	return ios, nil
}
