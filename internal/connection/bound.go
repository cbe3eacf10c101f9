package connection

import (
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/dimension"
)

// BindConfig is the configuration consumed when binding a Declaration.
//
// Names are explicit per-connection dataset type name overrides and take
// precedence over all template resolution. Templates are per-task
// template values layered over the declaration defaults. Options are
// free-form flags consumed by Trimmers to disable connections.
type BindConfig struct {
	Names     map[string]string
	Templates map[string]string
	Options   map[string]bool
}

// Option returns the named flag, or the given default when unset.
func (c BindConfig) Option(name string, def bool) bool {
	if v, ok := c.Options[name]; ok {
		return v
	}
	return def
}

// Trimmer is the task-defined narrowing step applied at bind time. Given
// the configuration it returns the identifiers to remove from the bound
// set. Removal is the only mutation permitted; identifiers it returns
// must be declared inputs, prerequisite inputs or outputs.
type Trimmer interface {
	Trim(cfg BindConfig) []string
}

// TrimmerFunc adapts a plain function to the Trimmer interface.
type TrimmerFunc func(cfg BindConfig) []string

// Trim implements Trimmer.
func (f TrimmerFunc) Trim(cfg BindConfig) []string { return f(cfg) }

// BoundConnection is a Descriptor whose dataset type name has been
// resolved to a concrete, registrable name.
type BoundConnection struct {
	Descriptor
	TypeName dataset.TypeName
}

// Type returns the registrable dataset type for this connection.
func (c BoundConnection) Type() dataset.Type {
	return dataset.Type{Name: c.TypeName, StorageClass: c.StorageClass}
}

// Bound is the result of binding a Declaration against a configuration:
// the surviving connections with concrete names. Bound values are frozen;
// resolution and execution read them but never change them.
type Bound struct {
	task  string
	dims  dimension.Set
	order []string
	conns map[string]BoundConnection
}

// Bind applies the configuration to the Declaration and returns the
// bound connection set. The Declaration is not modified.
//
// The optional trimmer runs first and may only remove identifiers from
// the inputs, prerequisiteInputs and outputs sets; removing an init
// connection or an undeclared identifier is a ConfigurationError. Name
// resolution then follows the precedence chain: explicit override, then
// per-task template value, then declaration default.
func (d *Declaration) Bind(cfg BindConfig, trimmer Trimmer) (*Bound, error) {
	removed := make(map[string]bool)
	if trimmer != nil {
		for _, id := range trimmer.Trim(cfg) {
			desc, ok := d.conns[id]
			if !ok {
				return nil, &ConfigurationError{
					Task:       d.task,
					Connection: id,
					Message:    "trimmer removed undeclared connection",
				}
			}
			if desc.Role.IsInit() {
				return nil, &ConfigurationError{
					Task:       d.task,
					Connection: id,
					Message:    "trimmer may not remove " + desc.Role.String() + " connections",
				}
			}
			removed[id] = true
		}
	}

	templates := ChainLookup(MapLookup(cfg.Templates), MapLookup(d.defaults))

	b := &Bound{
		task:  d.task,
		dims:  d.dims,
		order: make([]string, 0, len(d.order)),
		conns: make(map[string]BoundConnection, len(d.order)),
	}
	for _, id := range d.order {
		if removed[id] {
			continue
		}
		desc := d.conns[id]

		var name string
		if override, ok := cfg.Names[id]; ok {
			name = override
		} else {
			resolved, err := BindTemplate(desc.Name, templates)
			if err != nil {
				if ue, isTemplate := err.(*UnresolvedTemplateError); isTemplate {
					ue.Connection = id
				}
				return nil, &ConfigurationError{Task: d.task, Connection: id, Message: "resolve connection name", Err: err}
			}
			name = resolved
		}

		b.order = append(b.order, id)
		b.conns[id] = BoundConnection{Descriptor: desc, TypeName: dataset.TypeName(name)}
	}
	return b, nil
}

// Task returns the task label the bound set belongs to.
func (b *Bound) Task() string {
	return b.task
}

// Dimensions returns the task's own dimension set.
func (b *Bound) Dimensions() dimension.Set {
	return b.dims
}

// Identifiers returns the surviving identifiers in declaration order.
func (b *Bound) Identifiers() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Get returns the bound connection for an identifier.
func (b *Bound) Get(identifier string) (BoundConnection, bool) {
	c, ok := b.conns[identifier]
	return c, ok
}

// ByRole returns the surviving identifiers with the given role, in
// declaration order.
func (b *Bound) ByRole(role Role) []string {
	var out []string
	for _, id := range b.order {
		if b.conns[id].Role == role {
			out = append(out, id)
		}
	}
	return out
}

// Inputs returns the surviving ordinary input identifiers.
func (b *Bound) Inputs() []string { return b.ByRole(RoleInput) }

// PrerequisiteInputs returns the surviving prerequisite input
// identifiers.
func (b *Bound) PrerequisiteInputs() []string { return b.ByRole(RolePrerequisiteInput) }

// Outputs returns the surviving output identifiers.
func (b *Bound) Outputs() []string { return b.ByRole(RoleOutput) }

// InitInputs returns the init-input identifiers.
func (b *Bound) InitInputs() []string { return b.ByRole(RoleInitInput) }

// InitOutputs returns the init-output identifiers.
func (b *Bound) InitOutputs() []string { return b.ByRole(RoleInitOutput) }

// Quantum connections are the per-quantum identifiers: everything except
// init connections, in declaration order.
func (b *Bound) QuantumConnections() []string {
	var out []string
	for _, id := range b.order {
		if !b.conns[id].Role.IsInit() {
			out = append(out, id)
		}
	}
	return out
}
