package resolve

import (
	"errors"
	"fmt"

	"github.com/quantaforge/quanta/internal/dimension"
)

// MissingPrerequisiteError reports a candidate quantum whose prerequisite
// connection matched no references. Prerequisites are assumed to be
// supplied from outside the pipeline, so their absence is an
// external-data configuration error rather than a normal pipeline gap:
// the candidate fails hard instead of being silently dropped. Sibling
// candidates are unaffected.
type MissingPrerequisiteError struct {
	Task       string
	Connection string
	DataID     dimension.DataID
}

// Error implements the error interface.
func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("missing prerequisite %q for quantum %s (task=%s)",
		e.Connection, e.DataID, e.Task)
}

// IsMissingPrerequisite reports whether err is, or wraps, a
// MissingPrerequisiteError.
func IsMissingPrerequisite(err error) bool {
	var me *MissingPrerequisiteError
	return errors.As(err, &me)
}

// AdjustmentError reports an adjustment hook that broke the narrowing
// contract by returning a reference it was not offered, or by inventing
// a connection identifier. This is a task programming bug and fails the
// whole resolution.
type AdjustmentError struct {
	Task       string
	Connection string
	DataID     dimension.DataID
	Message    string
}

// Error implements the error interface.
func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("adjustment violation on %q for quantum %s (task=%s): %s",
		e.Connection, e.DataID, e.Task, e.Message)
}

// IsAdjustmentError reports whether err is, or wraps, an AdjustmentError.
func IsAdjustmentError(err error) bool {
	var ae *AdjustmentError
	return errors.As(err, &ae)
}
