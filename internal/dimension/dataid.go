package dimension

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DataID assigns a concrete value to each axis of some dimension Set.
//
// Values are opaque strings; callers with numeric axes (visit=42) render
// them in decimal before building the DataID. Comparison is exact
// structural equality, never numeric or fuzzy.
type DataID map[string]string

// NewDataID copies the given axis/value pairs into a DataID.
func NewDataID(values map[string]string) DataID {
	id := make(DataID, len(values))
	for k, v := range values {
		id[k] = v
	}
	return id
}

// Equal reports exact structural equality: same axes, same values.
func (id DataID) Equal(other DataID) bool {
	if len(id) != len(other) {
		return false
	}
	for k, v := range id {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Project returns the restriction of id to the axes of set.
// Extra axes carried by id are dropped, not matched. The second return
// value is false when id is missing a value for any axis of set.
func (id DataID) Project(set Set) (DataID, bool) {
	out := make(DataID, set.Len())
	for _, axis := range set.Names() {
		v, ok := id[axis]
		if !ok {
			return nil, false
		}
		out[axis] = v
	}
	return out, true
}

// Covers reports whether id has a value for every axis of set.
func (id DataID) Covers(set Set) bool {
	for _, axis := range set.Names() {
		if _, ok := id[axis]; !ok {
			return false
		}
	}
	return true
}

// CanonicalKey produces a deterministic string key for the DataID.
//
// Axes are sorted lexicographically and both axes and values are NFC
// normalized, so equal DataIDs always yield byte-identical keys. The key
// is the grouping and ordering join key during resolution; it is not a
// wire format.
func (id DataID) CanonicalKey() string {
	axes := make([]string, 0, len(id))
	for axis := range id {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	var b strings.Builder
	for i, axis := range axes {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(norm.NFC.String(axis))
		b.WriteByte('=')
		b.WriteString(norm.NFC.String(id[axis]))
	}
	return b.String()
}

// String renders the DataID in canonical axis order for logs and errors.
func (id DataID) String() string {
	return "{" + id.CanonicalKey() + "}"
}
