package connection

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a malformed declaration or a bad binding
// configuration. It is always detected before resolution starts.
type ConfigurationError struct {
	Task       string // task label, may be empty
	Connection string // connection identifier, may be empty
	Message    string
	Err        error // underlying cause, optional
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	switch {
	case e.Task != "" && e.Connection != "":
		return fmt.Sprintf("configuration error: %s (task=%s, connection=%s)", msg, e.Task, e.Connection)
	case e.Task != "":
		return fmt.Sprintf("configuration error: %s (task=%s)", msg, e.Task)
	default:
		return fmt.Sprintf("configuration error: %s", msg)
	}
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is, or wraps, a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// UnresolvedTemplateError reports a {identifier} placeholder with neither
// an override nor a default value.
type UnresolvedTemplateError struct {
	Connection string // connection identifier, may be empty
	Template   string // the full template string
	Identifier string // the placeholder that could not be resolved
}

// Error implements the error interface.
func (e *UnresolvedTemplateError) Error() string {
	if e.Connection != "" {
		return fmt.Sprintf("unresolved template identifier %q in %q (connection=%s)",
			e.Identifier, e.Template, e.Connection)
	}
	return fmt.Sprintf("unresolved template identifier %q in %q", e.Identifier, e.Template)
}

// IsUnresolvedTemplateError reports whether err is, or wraps, an
// UnresolvedTemplateError.
func IsUnresolvedTemplateError(err error) bool {
	var ue *UnresolvedTemplateError
	return errors.As(err, &ue)
}
