package dimension

import (
	"sort"
	"strings"
)

// Set is an immutable ordered set of dimension axis names.
//
// Declaration order is preserved for iteration and display, but equality
// and subset comparison are structural: two Sets with the same members in
// different order compare equal.
type Set struct {
	axes []string
}

// NewSet creates a Set from axis names. Duplicates are dropped, keeping
// the first occurrence.
func NewSet(axes ...string) Set {
	seen := make(map[string]bool, len(axes))
	out := make([]string, 0, len(axes))
	for _, a := range axes {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return Set{axes: out}
}

// Names returns the axis names in declaration order.
// The returned slice is a copy; mutating it does not affect the Set.
func (s Set) Names() []string {
	out := make([]string, len(s.axes))
	copy(out, s.axes)
	return out
}

// Len returns the number of axes.
func (s Set) Len() int {
	return len(s.axes)
}

// IsEmpty reports whether the Set has no axes.
func (s Set) IsEmpty() bool {
	return len(s.axes) == 0
}

// Contains reports whether the Set includes the named axis.
func (s Set) Contains(axis string) bool {
	for _, a := range s.axes {
		if a == axis {
			return true
		}
	}
	return false
}

// Equal reports structural equality: same members, order ignored.
func (s Set) Equal(other Set) bool {
	return len(s.axes) == len(other.axes) && s.SubsetOf(other)
}

// SubsetOf reports whether every axis of s is present in other.
// The empty Set is a subset of every Set.
func (s Set) SubsetOf(other Set) bool {
	for _, a := range s.axes {
		if !other.Contains(a) {
			return false
		}
	}
	return true
}

// StrictSupersetOf reports whether s contains every axis of other plus at
// least one more. A connection whose dimensions are a strict superset of
// the task dimensions maps one unit of work to many partitions.
func (s Set) StrictSupersetOf(other Set) bool {
	return len(s.axes) > len(other.axes) && other.SubsetOf(s)
}

// Union returns a new Set with the members of both, s's order first.
func (s Set) Union(other Set) Set {
	merged := make([]string, 0, len(s.axes)+len(other.axes))
	merged = append(merged, s.axes...)
	merged = append(merged, other.axes...)
	return NewSet(merged...)
}

// Sorted returns the axis names in lexicographic order.
// Used wherever a deterministic axis order is required.
func (s Set) Sorted() []string {
	out := s.Names()
	sort.Strings(out)
	return out
}

// String renders the Set as "{visit, detector}" in declaration order.
func (s Set) String() string {
	return "{" + strings.Join(s.axes, ", ") + "}"
}
