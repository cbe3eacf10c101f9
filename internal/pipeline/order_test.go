package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/dimension"
)

// makeTask builds a TaskDef consuming and producing the named dataset
// types over a single shared axis.
func makeTask(t *testing.T, label string, inputs, outputs []string) *TaskDef {
	t.Helper()
	dims := dimension.NewSet("visit")
	var entries []connection.Entry
	for _, name := range inputs {
		entries = append(entries, connection.Entry{
			Identifier: "in_" + name,
			Descriptor: connection.Descriptor{
				Role: connection.RoleInput, Dimensions: dims, StorageClass: "X", Name: name,
			},
		})
	}
	for _, name := range outputs {
		entries = append(entries, connection.Entry{
			Identifier: "out_" + name,
			Descriptor: connection.Descriptor{
				Role: connection.RoleOutput, Dimensions: dims, StorageClass: "X", Name: name,
			},
		})
	}
	decl, err := connection.New(label, dims, entries, nil)
	require.NoError(t, err)
	return &TaskDef{TaskName: label + "Task", Label: label, Connections: decl}
}

func TestIsOrdered(t *testing.T) {
	ordered := Pipeline{
		makeTask(t, "isr", []string{"raw"}, []string{"postISR"}),
		makeTask(t, "calibrate", []string{"postISR"}, []string{"calexp"}),
	}
	ok, err := IsOrdered(ordered)
	require.NoError(t, err)
	assert.True(t, ok)

	reversed := Pipeline{ordered[1], ordered[0]}
	ok, err = IsOrdered(reversed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsOrdered_PreExistingInputsAreFine(t *testing.T) {
	p := Pipeline{
		makeTask(t, "calibrate", []string{"postISR", "flat"}, []string{"calexp"}),
	}

	ok, err := IsOrdered(p)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsOrdered_DuplicateOutput(t *testing.T) {
	p := Pipeline{
		makeTask(t, "a", nil, []string{"calexp"}),
		makeTask(t, "b", nil, []string{"calexp"}),
	}

	_, err := IsOrdered(p)
	require.Error(t, err)
	var dup *DuplicateOutputError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "calexp", string(dup.Type))
}

func TestOrder_SortsByDependency(t *testing.T) {
	isr := makeTask(t, "isr", []string{"raw"}, []string{"postISR"})
	calibrate := makeTask(t, "calibrate", []string{"postISR"}, []string{"calexp"})
	coadd := makeTask(t, "coadd", []string{"calexp"}, []string{"deepCoadd"})

	ordered, err := Order(Pipeline{coadd, calibrate, isr})
	require.NoError(t, err)
	assert.Equal(t, []string{"isr", "calibrate", "coadd"}, ordered.Labels())
}

func TestOrder_PreservesRelativeOrderOfIndependentTasks(t *testing.T) {
	// Neither task depends on the other; the original order stands even
	// though a reordering would also be valid.
	a := makeTask(t, "astrometry", []string{"calexp"}, []string{"wcs"})
	b := makeTask(t, "photometry", []string{"calexp"}, []string{"zeropoint"})

	ordered, err := Order(Pipeline{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"astrometry", "photometry"}, ordered.Labels())

	ordered, err = Order(Pipeline{b, a})
	require.NoError(t, err)
	assert.Equal(t, []string{"photometry", "astrometry"}, ordered.Labels())
}

func TestOrder_AlreadyOrderedIsStable(t *testing.T) {
	p := Pipeline{
		makeTask(t, "isr", []string{"raw"}, []string{"postISR"}),
		makeTask(t, "calibrate", []string{"postISR"}, []string{"calexp"}),
	}

	ordered, err := Order(p)
	require.NoError(t, err)
	assert.Equal(t, p.Labels(), ordered.Labels())
}

func TestOrder_Cycle(t *testing.T) {
	p := Pipeline{
		makeTask(t, "a", []string{"beta"}, []string{"alpha"}),
		makeTask(t, "b", []string{"alpha"}, []string{"beta"}),
	}

	_, err := Order(p)
	require.Error(t, err)
	assert.True(t, IsDataCycle(err))
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestOrder_DuplicateOutput(t *testing.T) {
	p := Pipeline{
		makeTask(t, "a", nil, []string{"calexp"}),
		makeTask(t, "b", nil, []string{"calexp"}),
	}

	_, err := Order(p)
	require.Error(t, err)
	var dup *DuplicateOutputError
	assert.ErrorAs(t, err, &dup)
}

func TestOrder_ConfigRename(t *testing.T) {
	// An explicit connection-name override changes the dependency graph:
	// calibrate now consumes a type nothing produces, so both orders are
	// valid and the original order is kept.
	isr := makeTask(t, "isr", []string{"raw"}, []string{"postISR"})
	calibrate := makeTask(t, "calibrate", []string{"postISR"}, []string{"calexp"})
	calibrate.Config = nil

	ordered, err := Order(Pipeline{calibrate, isr})
	require.NoError(t, err)
	assert.Equal(t, []string{"isr", "calibrate"}, ordered.Labels())

	// Rename the consumed type away from isr's output.
	calibrate.Config = configWithConnection("in_postISR", "externalISR")
	ordered, err = Order(Pipeline{calibrate, isr})
	require.NoError(t, err)
	assert.Equal(t, []string{"calibrate", "isr"}, ordered.Labels())
}
