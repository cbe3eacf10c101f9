// Package dataset defines references to concrete data products tracked by
// a registry. References are produced by the registry, joined on during
// quantum resolution, and dereferenced at execution time; this core never
// mutates them.
package dataset

import (
	"fmt"

	"github.com/quantaforge/quanta/internal/dimension"
)

// TypeName is the registered name of a dataset type, after template
// resolution (for example "calexp" or "deepCoadd_directWarp").
type TypeName string

// Type describes a registered dataset type: a name plus the storage class
// that tells the persistence layer how values of this type are handled.
type Type struct {
	Name         TypeName `json:"name"`
	StorageClass string   `json:"storage_class"`
}

// Ref identifies one concrete partition of a dataset type in a registry.
//
// ID is the registry-assigned opaque identifier. DataID carries the
// dimension values of the partition and may include axes beyond those the
// consumer cares about; consumers project it onto their own dimension set.
type Ref struct {
	ID     string           `json:"id"`
	Type   TypeName         `json:"type"`
	DataID dimension.DataID `json:"data_id"`
}

// Key returns a deterministic identity string for the reference,
// combining the type name with the canonical data ID key.
func (r Ref) Key() string {
	return string(r.Type) + "@" + r.DataID.CanonicalKey()
}

// String renders the reference for logs and error messages.
func (r Ref) String() string {
	return fmt.Sprintf("%s%s", r.Type, r.DataID)
}
