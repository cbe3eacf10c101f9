package connection

import (
	"fmt"

	"github.com/quantaforge/quanta/internal/dimension"
)

// Descriptor declares one data product a task consumes or produces.
//
// Name may contain {identifier} template placeholders; every identifier
// must have a default in the owning Declaration's template table.
type Descriptor struct {
	// Role classifies the connection (input, output, prerequisite, ...).
	Role Role

	// Dimensions is the axis set the product is partitioned over. Must be
	// empty for init roles, which are task-scoped rather than
	// quantum-scoped.
	Dimensions dimension.Set

	// StorageClass names how the persistence layer handles values of this
	// product. Opaque to this core.
	StorageClass string

	// Name is the dataset type name, possibly templated.
	Name string

	// Multiple allows zero-or-more references per quantum. Required when
	// Dimensions is a strict superset of the task dimensions: one unit of
	// work then maps to many partitions along the extra axes.
	Multiple bool

	// DeferLoad supplies the value as a lazy handle instead of an eager
	// fetch before task logic runs. Only meaningful for input roles.
	DeferLoad bool
}

// validate checks the descriptor's internal invariants against the task
// dimension set. Called during Declaration construction.
func (d Descriptor) validate(taskDims dimension.Set) error {
	if !d.Role.valid() {
		return fmt.Errorf("invalid role %d", int(d.Role))
	}
	if d.Name == "" {
		return fmt.Errorf("connection name must not be empty")
	}
	if d.StorageClass == "" {
		return fmt.Errorf("storage class must not be empty")
	}
	if d.Role.IsInit() {
		if !d.Dimensions.IsEmpty() {
			return fmt.Errorf("%s connection must not carry dimensions, got %s", d.Role, d.Dimensions)
		}
		return nil
	}
	if d.Dimensions.StrictSupersetOf(taskDims) && !d.Multiple {
		return fmt.Errorf("dimensions %s exceed task dimensions %s, so multiple must be set",
			d.Dimensions, taskDims)
	}
	if d.DeferLoad && !d.Role.IsInput() {
		return fmt.Errorf("deferLoad is only valid on input connections, not %s", d.Role)
	}
	return nil
}
