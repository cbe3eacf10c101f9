package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataID_EqualIsStructural(t *testing.T) {
	a := DataID{"visit": "42", "detector": "7"}
	b := DataID{"detector": "7", "visit": "42"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(DataID{"visit": "42"}))
	assert.False(t, a.Equal(DataID{"visit": "42", "detector": "8"}))

	// Values are opaque strings: "042" and "42" are different.
	assert.False(t, DataID{"visit": "042"}.Equal(DataID{"visit": "42"}))
}

func TestDataID_Project(t *testing.T) {
	id := DataID{"visit": "42", "detector": "7", "band": "r"}

	proj, ok := id.Project(NewSet("visit", "detector"))
	assert.True(t, ok)
	assert.True(t, proj.Equal(DataID{"visit": "42", "detector": "7"}))

	// Missing axis fails the projection.
	_, ok = id.Project(NewSet("visit", "tract"))
	assert.False(t, ok)

	// Projection onto the empty set yields the empty DataID.
	empty, ok := id.Project(NewSet())
	assert.True(t, ok)
	assert.Len(t, empty, 0)
}

func TestDataID_Covers(t *testing.T) {
	id := DataID{"visit": "42", "detector": "7"}

	assert.True(t, id.Covers(NewSet("visit")))
	assert.True(t, id.Covers(NewSet("visit", "detector")))
	assert.False(t, id.Covers(NewSet("visit", "band")))
}

func TestDataID_CanonicalKeySortsAxes(t *testing.T) {
	a := DataID{"visit": "42", "detector": "7"}
	b := DataID{"detector": "7", "visit": "42"}

	assert.Equal(t, "detector=7;visit=42", a.CanonicalKey())
	assert.Equal(t, a.CanonicalKey(), b.CanonicalKey())
}

func TestDataID_CanonicalKeyNormalizesUnicode(t *testing.T) {
	// "e" + combining acute vs precomposed "é".
	decomposed := DataID{"field": "é"}
	precomposed := DataID{"field": "é"}

	assert.Equal(t, precomposed.CanonicalKey(), decomposed.CanonicalKey())
}

func TestDataID_String(t *testing.T) {
	id := DataID{"visit": "42", "detector": "7"}

	assert.Equal(t, "{detector=7;visit=42}", id.String())
	assert.Equal(t, "{}", DataID{}.String())
}

func TestNewDataID_Copies(t *testing.T) {
	src := map[string]string{"visit": "42"}
	id := NewDataID(src)
	src["visit"] = "43"

	assert.Equal(t, "42", id["visit"])
}
