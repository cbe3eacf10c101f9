package registry

import (
	"errors"
	"fmt"

	"github.com/quantaforge/quanta/internal/dataset"
)

// UnregisteredDatasetTypeError reports an attempt to persist a dataset
// under a type name that was never registered. Registration is an
// explicit step so a naming typo cannot silently create a new output
// type.
type UnregisteredDatasetTypeError struct {
	Type dataset.TypeName
}

// Error implements the error interface.
func (e *UnregisteredDatasetTypeError) Error() string {
	return fmt.Sprintf("dataset type %q is not registered; run the register step first", e.Type)
}

// IsUnregisteredType reports whether err is, or wraps, an
// UnregisteredDatasetTypeError.
func IsUnregisteredType(err error) bool {
	var ue *UnregisteredDatasetTypeError
	return errors.As(err, &ue)
}

// StorageClassMismatchError reports a re-registration of a dataset type
// with a different storage class than the first registration.
type StorageClassMismatchError struct {
	Type     dataset.TypeName
	Existing string
	Given    string
}

// Error implements the error interface.
func (e *StorageClassMismatchError) Error() string {
	return fmt.Sprintf("dataset type %q already registered with storage class %q, not %q",
		e.Type, e.Existing, e.Given)
}

// ErrNotFound reports a dereference of a reference with no stored
// dataset.
var ErrNotFound = errors.New("dataset not found")
