// Package registry provides the SQLite-backed dataset catalog.
//
// The registry tracks two things: registered dataset types (name plus
// storage class) and concrete datasets (a reference with dimension
// values, plus an opaque payload). It implements both catalog
// capabilities the core consumes: the query capability used during
// resolution and the dereference/persist capability used during
// execution.
//
// Dataset types must be registered explicitly before the first dataset
// of that type is persisted, so a typo in a connection name or template
// fails at persist time instead of silently creating a new output type.
//
// Physical serialization stays out of this core; the registry delegates
// payload encoding to a pluggable Codec and ships a JSON codec as the
// default.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: datasets must reference a registered type
//
// All queries order results by the canonical data ID key so that
// resolution sees identical reference order on every run.
package registry
