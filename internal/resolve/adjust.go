package resolve

import (
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/dimension"
)

// Candidate is the pre-adjustment view of one prospective quantum offered
// to an adjustment hook: the task-dimension data ID and the per-connection
// reference lists gathered from the registry.
//
// The maps and slices handed to a hook are copies; a hook cannot reach
// resolver state through them.
type Candidate struct {
	Task   string
	DataID dimension.DataID
	Refs   map[string][]dataset.Ref
}

// Adjuster is the task-defined per-candidate adjustment hook.
//
// An Adjuster must be a pure function of the candidate it is given and
// the configuration it was built with: it must not consult or mutate
// state shared across candidates, which is what permits candidates to be
// adjusted concurrently.
//
// The returned map replaces the candidate's reference lists. It is
// narrowing-only: every returned reference must come from the offered
// lists, and every key must be an offered connection identifier. An
// omitted key keeps the offered list unchanged; an empty slice removes
// all references for that connection. The resolver enforces the contract
// and fails resolution on a violation.
type Adjuster interface {
	Adjust(c Candidate) (map[string][]dataset.Ref, error)
}

// AdjusterFunc adapts a plain function to the Adjuster interface.
type AdjusterFunc func(c Candidate) (map[string][]dataset.Ref, error)

// Adjust implements Adjuster.
func (f AdjusterFunc) Adjust(c Candidate) (map[string][]dataset.Ref, error) {
	return f(c)
}

// IntersectDataIDs is a ready-made Adjuster body for the common case of
// keeping only references whose data IDs (projected onto the given axes)
// appear in every one of the named connections. Connections outside the
// list are left untouched.
func IntersectDataIDs(axes dimension.Set, connections ...string) AdjusterFunc {
	return func(c Candidate) (map[string][]dataset.Ref, error) {
		if len(connections) == 0 {
			return nil, nil
		}

		// Count, per projected key, how many of the named connections
		// offered a reference with that key.
		seen := make(map[string]int)
		for _, id := range connections {
			keys := make(map[string]bool)
			for _, ref := range c.Refs[id] {
				proj, ok := ref.DataID.Project(axes)
				if !ok {
					continue
				}
				keys[proj.CanonicalKey()] = true
			}
			for k := range keys {
				seen[k]++
			}
		}

		out := make(map[string][]dataset.Ref, len(connections))
		for _, id := range connections {
			kept := make([]dataset.Ref, 0, len(c.Refs[id]))
			for _, ref := range c.Refs[id] {
				proj, ok := ref.DataID.Project(axes)
				if ok && seen[proj.CanonicalKey()] == len(connections) {
					kept = append(kept, ref)
				}
			}
			out[id] = kept
		}
		return out, nil
	}
}

// applyAdjustment runs the hook on a candidate and enforces the
// narrowing contract. Returns the surviving per-connection lists.
func applyAdjustment(adj Adjuster, c Candidate) (map[string][]dataset.Ref, error) {
	if adj == nil {
		return c.Refs, nil
	}

	adjusted, err := adj.Adjust(c)
	if err != nil {
		return nil, err
	}
	if adjusted == nil {
		return c.Refs, nil
	}

	out := make(map[string][]dataset.Ref, len(c.Refs))
	for id, offered := range c.Refs {
		out[id] = offered
	}
	for id, kept := range adjusted {
		offered, ok := c.Refs[id]
		if !ok {
			return nil, &AdjustmentError{
				Task:       c.Task,
				Connection: id,
				DataID:     c.DataID,
				Message:    "hook returned undeclared connection",
			}
		}
		remaining := make(map[string]int, len(offered))
		for _, ref := range offered {
			remaining[ref.Key()]++
		}
		for _, ref := range kept {
			if remaining[ref.Key()] == 0 {
				msg := "hook returned reference " + ref.String() + " it was not offered"
				if _, wasOffered := remaining[ref.Key()]; wasOffered {
					msg = "hook returned reference " + ref.String() + " more times than offered"
				}
				return nil, &AdjustmentError{
					Task:       c.Task,
					Connection: id,
					DataID:     c.DataID,
					Message:    msg,
				}
			}
			remaining[ref.Key()]--
		}
		out[id] = kept
	}
	return out, nil
}
