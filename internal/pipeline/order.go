package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quantaforge/quanta/internal/dataset"
)

// DuplicateOutputError reports two tasks producing the same dataset
// type. A dataset type has at most one producer in a pipeline.
type DuplicateOutputError struct {
	Type dataset.TypeName
}

// Error implements the error interface.
func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("dataset type %q appears more than once as an output", e.Type)
}

// DataCycleError reports a data dependency cycle between tasks.
type DataCycleError struct {
	Edges []string // "inputs -> label -> outputs" per task stuck in a cycle
}

// Error implements the error interface.
func (e *DataCycleError) Error() string {
	return "pipeline has data cycles:\n" + strings.Join(e.Edges, "\n")
}

// IsDataCycle reports whether err is, or wraps, a DataCycleError.
func IsDataCycle(err error) bool {
	var ce *DataCycleError
	return errors.As(err, &ce)
}

// IsOrdered reports whether every dataset type produced in the pipeline
// is consumed only by tasks after its producer. Pre-existing inputs
// (consumed but produced by no task) never violate ordering.
func IsOrdered(p Pipeline) (bool, error) {
	ios, err := resolveIO(p)
	if err != nil {
		return false, err
	}

	producer := make(map[dataset.TypeName]int)
	for idx, io := range ios {
		for name := range io.outputs {
			if _, dup := producer[name]; dup {
				return false, &DuplicateOutputError{Type: name}
			}
			producer[name] = idx
		}
	}

	for idx, io := range ios {
		for name := range io.inputs {
			if prodIdx, ok := producer[name]; ok && prodIdx >= idx {
				return false, nil
			}
		}
	}
	return true, nil
}

// Order re-orders the pipeline so data dependencies are satisfied,
// keeping the original relative order of tasks wherever possible. This
// is Kahn's algorithm with a virtual upstream producer for every
// pre-existing input and an index-sorted ready queue.
func Order(p Pipeline) (Pipeline, error) {
	ios, err := resolveIO(p)
	if err != nil {
		return nil, err
	}

	const preExisting = -1

	inputs := make(map[int]map[dataset.TypeName]bool, len(p))
	outputs := make(map[int]map[dataset.TypeName]bool, len(p))
	allInputs := make(map[dataset.TypeName]bool)
	allOutputs := make(map[dataset.TypeName]bool)

	for idx, io := range ios {
		for name := range io.outputs {
			if allOutputs[name] {
				return nil, &DuplicateOutputError{Type: name}
			}
			allOutputs[name] = true
		}
		outputs[idx] = io.outputs
		inputs[idx] = make(map[dataset.TypeName]bool, len(io.inputs))
		for name := range io.inputs {
			inputs[idx][name] = true
			allInputs[name] = true
		}
	}

	// Everything consumed but never produced comes from upstream of the
	// pipeline; a virtual node produces it all.
	outputs[preExisting] = make(map[dataset.TypeName]bool)
	for name := range allInputs {
		if !allOutputs[name] {
			outputs[preExisting][name] = true
		}
	}

	queue := []int{preExisting}
	var result []int
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if idx >= 0 {
			result = append(result, idx)
		}

		for name := range outputs[idx] {
			for _, taskInputs := range inputs {
				delete(taskInputs, name)
			}
		}

		var ready []int
		for key, taskInputs := range inputs {
			if len(taskInputs) == 0 {
				ready = append(ready, key)
			}
		}
		for _, key := range ready {
			delete(inputs, key)
		}
		queue = append(queue, ready...)
		sort.Ints(queue)
	}

	// Anything still waiting on an input is part of a cycle.
	if len(inputs) > 0 {
		stuck := make([]int, 0, len(inputs))
		for idx := range inputs {
			stuck = append(stuck, idx)
		}
		sort.Ints(stuck)
		edges := make([]string, 0, len(stuck))
		for _, idx := range stuck {
			edges = append(edges, fmt.Sprintf("   %s -> %s -> %s",
				typeNames(inputs[idx]), p[idx].Label, typeNames(outputs[idx])))
		}
		return nil, &DataCycleError{Edges: edges}
	}

	ordered := make(Pipeline, len(result))
	for i, idx := range result {
		ordered[i] = p[idx]
	}
	return ordered, nil
}

// typeNames renders a type set sorted for stable error messages.
func typeNames(set map[dataset.TypeName]bool) string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}
