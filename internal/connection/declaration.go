package connection

import (
	"fmt"

	"github.com/quantaforge/quanta/internal/dimension"
)

// Entry pairs a connection identifier with its Descriptor for
// Declaration construction. Declaration order is the order of entries.
type Entry struct {
	Identifier string
	Descriptor Descriptor
}

// Declaration is the frozen, ordered collection of a task's connection
// Descriptors, partitioned by role, plus the task dimension set and the
// template-default table.
//
// A Declaration is immutable after New returns. Configuration-dependent
// narrowing happens in Bind, which returns a separate Bound value.
type Declaration struct {
	task     string
	dims     dimension.Set
	order    []string
	conns    map[string]Descriptor
	defaults map[string]string
}

// New builds a Declaration from a fixed descriptor list and a
// template-default table.
//
// Validation is eager: duplicate or empty identifiers, descriptor
// invariant violations, and template identifiers without a default all
// fail here with a ConfigurationError, never later during resolution.
func New(task string, dims dimension.Set, entries []Entry, templateDefaults map[string]string) (*Declaration, error) {
	d := &Declaration{
		task:     task,
		dims:     dims,
		order:    make([]string, 0, len(entries)),
		conns:    make(map[string]Descriptor, len(entries)),
		defaults: make(map[string]string, len(templateDefaults)),
	}
	for k, v := range templateDefaults {
		d.defaults[k] = v
	}

	for _, e := range entries {
		if e.Identifier == "" {
			return nil, &ConfigurationError{Task: task, Message: "connection identifier must not be empty"}
		}
		if _, dup := d.conns[e.Identifier]; dup {
			return nil, &ConfigurationError{
				Task:       task,
				Connection: e.Identifier,
				Message:    "duplicate connection identifier",
			}
		}
		if err := e.Descriptor.validate(dims); err != nil {
			return nil, &ConfigurationError{Task: task, Connection: e.Identifier, Message: "invalid connection", Err: err}
		}

		idents, err := TemplateIdentifiers(e.Descriptor.Name)
		if err != nil {
			return nil, &ConfigurationError{Task: task, Connection: e.Identifier, Message: "invalid connection name", Err: err}
		}
		for _, ident := range idents {
			if _, ok := d.defaults[ident]; !ok {
				return nil, &ConfigurationError{
					Task:       task,
					Connection: e.Identifier,
					Message:    "template identifier has no default",
					Err: &UnresolvedTemplateError{
						Connection: e.Identifier,
						Template:   e.Descriptor.Name,
						Identifier: ident,
					},
				}
			}
		}

		d.order = append(d.order, e.Identifier)
		d.conns[e.Identifier] = e.Descriptor
	}
	return d, nil
}

// Task returns the task label the Declaration belongs to.
func (d *Declaration) Task() string {
	return d.task
}

// Dimensions returns the task's own dimension set.
func (d *Declaration) Dimensions() dimension.Set {
	return d.dims
}

// Identifiers returns all connection identifiers in declaration order.
func (d *Declaration) Identifiers() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Get returns the Descriptor for an identifier.
func (d *Declaration) Get(identifier string) (Descriptor, bool) {
	desc, ok := d.conns[identifier]
	return desc, ok
}

// ByRole returns the identifiers with the given role, in declaration
// order.
func (d *Declaration) ByRole(role Role) []string {
	var out []string
	for _, id := range d.order {
		if d.conns[id].Role == role {
			out = append(out, id)
		}
	}
	return out
}

// Inputs returns the ordinary input identifiers in declaration order.
func (d *Declaration) Inputs() []string { return d.ByRole(RoleInput) }

// PrerequisiteInputs returns the prerequisite input identifiers in
// declaration order.
func (d *Declaration) PrerequisiteInputs() []string { return d.ByRole(RolePrerequisiteInput) }

// Outputs returns the output identifiers in declaration order.
func (d *Declaration) Outputs() []string { return d.ByRole(RoleOutput) }

// InitInputs returns the init-input identifiers in declaration order.
func (d *Declaration) InitInputs() []string { return d.ByRole(RoleInitInput) }

// InitOutputs returns the init-output identifiers in declaration order.
func (d *Declaration) InitOutputs() []string { return d.ByRole(RoleInitOutput) }

// TemplateDefaults returns a copy of the template-default table.
func (d *Declaration) TemplateDefaults() map[string]string {
	out := make(map[string]string, len(d.defaults))
	for k, v := range d.defaults {
		out[k] = v
	}
	return out
}

// ResolveNames resolves every connection's dataset type name using the
// given per-task template values layered over the declaration defaults.
// Construction guarantees a default for every template identifier, so on
// a valid Declaration this always succeeds.
func (d *Declaration) ResolveNames(templateValues map[string]string) (map[string]string, error) {
	lookup := ChainLookup(MapLookup(templateValues), MapLookup(d.defaults))
	out := make(map[string]string, len(d.order))
	for _, id := range d.order {
		name, err := BindTemplate(d.conns[id].Name, lookup)
		if err != nil {
			return nil, fmt.Errorf("resolve name for connection %s: %w", id, err)
		}
		out[id] = name
	}
	return out, nil
}
