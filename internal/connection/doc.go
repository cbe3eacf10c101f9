// Package connection models the declared data interface of a task.
//
// A Declaration is an ordered, named collection of connection Descriptors
// plus the task's own dimension set and a table of template defaults. It
// is built once at task-definition time and validated eagerly: a template
// identifier without a default, a dimensioned init connection, or a
// single-valued connection spanning more axes than the task all fail
// construction, never resolution.
//
// Binding a Declaration against a configuration is a pure narrowing
// transform: Bind returns a new Bound value with names resolved and any
// configuration-disabled connections removed. The Declaration itself is
// never mutated, so one Declaration can be bound many times with
// different configurations.
//
// Name templates use {identifier} placeholders. Resolution precedence is
// an ordered lookup chain: explicit per-connection name override, then
// per-task template value, then declaration default.
package connection
