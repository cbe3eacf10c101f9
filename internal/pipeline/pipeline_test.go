package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/taskconfig"
)

// configWithConnection builds a task config carrying one explicit
// connection-name override.
func configWithConnection(identifier, typeName string) *taskconfig.Config {
	return &taskconfig.Config{Connections: map[string]string{identifier: typeName}}
}

func TestTaskDef_Bind(t *testing.T) {
	task := makeTask(t, "calibrate", []string{"postISR"}, []string{"calexp"})

	bound, err := task.Bind(nil)
	require.NoError(t, err)
	conn, ok := bound.Get("in_postISR")
	require.True(t, ok)
	assert.Equal(t, dataset.TypeName("postISR"), conn.TypeName)
}

func TestTaskDef_BindAppliesConfigAndTrimmer(t *testing.T) {
	task := makeTask(t, "calibrate", []string{"postISR"}, []string{"calexp", "src"})
	task.Config = &taskconfig.Config{
		Connections: map[string]string{"in_postISR": "externalISR"},
		Options:     map[string]bool{"doWriteSources": false},
	}

	trimmer := connection.TrimmerFunc(func(cfg connection.BindConfig) []string {
		if !cfg.Option("doWriteSources", true) {
			return []string{"out_src"}
		}
		return nil
	})

	bound, err := task.Bind(trimmer)
	require.NoError(t, err)

	conn, _ := bound.Get("in_postISR")
	assert.Equal(t, dataset.TypeName("externalISR"), conn.TypeName)
	assert.Equal(t, []string{"out_calexp"}, bound.Outputs())
}

func TestPipeline_Labels(t *testing.T) {
	p := Pipeline{
		makeTask(t, "isr", nil, []string{"postISR"}),
		makeTask(t, "calibrate", []string{"postISR"}, []string{"calexp"}),
	}

	assert.Equal(t, []string{"isr", "calibrate"}, p.Labels())
}
