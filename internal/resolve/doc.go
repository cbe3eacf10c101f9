// Package resolve turns a bound connection set plus a registry query
// capability into an ordered, deduplicated sequence of executable quanta.
//
// ALGORITHM:
//
//  1. Query the registry once per input and prerequisite connection for
//     all references of the connection's resolved dataset type.
//  2. Group references by the projection of their data ID onto the
//     task's dimension set; each distinct projection is a candidate.
//  3. Synthesize output references for each candidate from the
//     candidate's data ID and the output connections' resolved names.
//  4. Run the task-defined adjustment hook per candidate. The hook is a
//     pure narrowing transform: it may drop references from any list but
//     never introduce one it was not offered. Violations fail resolution.
//  5. Post-check role invariants: a prerequisite with zero surviving
//     references is a hard per-candidate failure; any other non-multiple
//     connection with other than exactly one surviving reference drops
//     the candidate silently (logged, not fatal).
//  6. Emit survivors sorted by canonical data ID key.
//
// Candidates share no mutable state, so steps 4-5 run concurrently on a
// fixed worker pool; the final sort restores the stable order. A failure
// in one candidate never affects its siblings and there is no global
// rollback.
package resolve
