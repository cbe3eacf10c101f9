package exec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quantaforge/quanta/internal/dimension"
)

// OutputMismatchError reports task logic whose returned mapping does not
// cover exactly the surviving declared output identifiers of the
// quantum. Nothing is persisted for the quantum when this is raised.
type OutputMismatchError struct {
	Task    string
	DataID  dimension.DataID
	Missing []string // declared outputs absent from the returned mapping
	Extra   []string // returned keys that are not surviving outputs
}

// Error implements the error interface.
func (e *OutputMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %v", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra %v", e.Extra))
	}
	return fmt.Sprintf("output mismatch for quantum %s (task=%s): %s",
		e.DataID, e.Task, strings.Join(parts, ", "))
}

// IsOutputMismatch reports whether err is, or wraps, an
// OutputMismatchError.
func IsOutputMismatch(err error) bool {
	var oe *OutputMismatchError
	return errors.As(err, &oe)
}

// newOutputMismatch builds the error with sorted field lists for stable
// messages.
func newOutputMismatch(task string, dataID dimension.DataID, missing, extra []string) *OutputMismatchError {
	sort.Strings(missing)
	sort.Strings(extra)
	return &OutputMismatchError{Task: task, DataID: dataID, Missing: missing, Extra: extra}
}

// DoubleFetchError reports an execution strategy that dereferenced the
// same non-deferred input reference twice within one quantum.
type DoubleFetchError struct {
	Task string
	Ref  string
}

// Error implements the error interface.
func (e *DoubleFetchError) Error() string {
	return fmt.Sprintf("input %s fetched twice in one quantum (task=%s)", e.Ref, e.Task)
}

// DoublePersistError reports an execution strategy that persisted the
// same output reference twice within one quantum.
type DoublePersistError struct {
	Task string
	Ref  string
}

// Error implements the error interface.
func (e *DoublePersistError) Error() string {
	return fmt.Sprintf("output %s persisted twice in one quantum (task=%s)", e.Ref, e.Task)
}

// MissingPersistError reports an execution strategy whose persist phase
// completed without writing a surviving output reference.
type MissingPersistError struct {
	Task       string
	Connection string
	Ref        string
}

// Error implements the error interface.
func (e *MissingPersistError) Error() string {
	return fmt.Sprintf("output %s for connection %s was not persisted (task=%s)", e.Ref, e.Connection, e.Task)
}
