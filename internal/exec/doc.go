// Package exec runs task logic over resolved quanta.
//
// The Runner owns the execution contract: materialize (or defer) the
// quantum's inputs, invoke the task logic with identifier-keyed
// bindings, validate the returned outputs against the surviving declared
// output identifiers, and persist them through the registry. Two
// invariants hold regardless of strategy:
//
//   - every declared output identifier is persisted exactly once per
//     quantum, and nothing is persisted when task logic fails or returns
//     a mismatched output set;
//   - every non-deferred input is fetched at most once per quantum
//     (enforced by a fetch tracker wrapped around the registry).
//
// The default Strategy fetches non-deferred inputs concurrently and
// persists outputs concurrently after task logic returns. Tasks that
// need a different shape of fetch or persist supply their own Strategy;
// the Runner-level invariants still apply.
//
// Executions of distinct quanta are independent: no ordering is promised
// between them, a failure in one leaves the others untouched, and no
// state is carried from one quantum to the next. Each execution is
// stamped with a time-sortable run token for log correlation.
package exec
