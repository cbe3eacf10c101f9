package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSet_DeduplicatesKeepingFirst(t *testing.T) {
	s := NewSet("visit", "detector", "visit", "", "band")

	assert.Equal(t, []string{"visit", "detector", "band"}, s.Names())
	assert.Equal(t, 3, s.Len())
}

func TestSet_Empty(t *testing.T) {
	s := NewSet()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, "{}", s.String())
	assert.True(t, s.SubsetOf(NewSet("visit")))
	assert.True(t, s.SubsetOf(NewSet()))
}

func TestSet_EqualIgnoresOrder(t *testing.T) {
	a := NewSet("visit", "detector")
	b := NewSet("detector", "visit")
	c := NewSet("visit")

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))
}

func TestSet_SubsetOf(t *testing.T) {
	task := NewSet("visit", "detector")

	assert.True(t, NewSet("visit").SubsetOf(task))
	assert.True(t, task.SubsetOf(task))
	assert.False(t, NewSet("visit", "band").SubsetOf(task))
}

func TestSet_StrictSupersetOf(t *testing.T) {
	task := NewSet("visit")

	assert.True(t, NewSet("visit", "detector").StrictSupersetOf(task))
	assert.False(t, task.StrictSupersetOf(task))
	assert.False(t, NewSet("detector").StrictSupersetOf(task))
}

func TestSet_UnionPreservesDeclarationOrder(t *testing.T) {
	a := NewSet("visit", "detector")
	b := NewSet("detector", "band")

	assert.Equal(t, []string{"visit", "detector", "band"}, a.Union(b).Names())
}

func TestSet_Sorted(t *testing.T) {
	s := NewSet("visit", "band", "detector")

	assert.Equal(t, []string{"band", "detector", "visit"}, s.Sorted())
	// Names keeps declaration order.
	assert.Equal(t, []string{"visit", "band", "detector"}, s.Names())
}

func TestSet_NamesReturnsCopy(t *testing.T) {
	s := NewSet("visit", "detector")
	names := s.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"visit", "detector"}, s.Names())
}
