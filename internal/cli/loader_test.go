package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaforge/quanta/internal/dataset"
)

func TestLoadPipeline(t *testing.T) {
	p, name, err := LoadPipeline(filepath.Join("testdata", "pipelines", "demo"))

	require.NoError(t, err)
	assert.Equal(t, "demo", name)
	require.Len(t, p, 2)
	assert.Equal(t, []string{"isr", "calibrate"}, p.Labels())

	isr := p[0]
	assert.Equal(t, "ISRTask", isr.TaskName)
	assert.Equal(t, []string{"raw"}, isr.Connections.Inputs())
	assert.Equal(t, []string{"bias"}, isr.Connections.PrerequisiteInputs())
	assert.Equal(t, []string{"postISR"}, isr.Connections.Outputs())

	// Template defaults from the pipeline file flow into name binding.
	bound, err := p[1].Bind(nil)
	require.NoError(t, err)
	conn, ok := bound.Get("calexp")
	require.True(t, ok)
	assert.Equal(t, dataset.TypeName("deep_calexp"), conn.TypeName)
}

func TestLoadPipeline_MissingDirectory(t *testing.T) {
	_, _, err := LoadPipeline(filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadPipeline_NoCUEFiles(t *testing.T) {
	_, _, err := LoadPipeline(t.TempDir())

	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNoFiles, le.Code)
}

func TestLoadPipeline_InvalidRole(t *testing.T) {
	dir := t.TempDir()
	writePipelineFile(t, dir, `
package bad

pipeline: {
	name: "bad"
	tasks: [{
		task:  "T"
		label: "t"
		dimensions: ["visit"]
		connections: [{
			identifier:   "in"
			role:         "sideways"
			name:         "x"
			storageClass: "X"
			dimensions: ["visit"]
		}]
	}]
}
`)

	_, _, err := LoadPipeline(dir)

	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeInvalid, le.Code)
	assert.Contains(t, le.Message, "sideways")
}

func TestLoadPipeline_DuplicateLabels(t *testing.T) {
	dir := t.TempDir()
	writePipelineFile(t, dir, `
package bad

pipeline: {
	name: "bad"
	tasks: [
		{task: "T", label: "t", dimensions: ["visit"], connections: [{
			identifier: "out", role: "output", name: "a", storageClass: "X", dimensions: ["visit"]
		}]},
		{task: "T", label: "t", dimensions: ["visit"], connections: [{
			identifier: "out", role: "output", name: "b", storageClass: "X", dimensions: ["visit"]
		}]},
	]
}
`)

	_, _, err := LoadPipeline(dir)

	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeInvalid, le.Code)
	assert.Contains(t, le.Message, "duplicate")
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("package p\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.cue"), 0o755))

	files, err := FindCUEFiles(dir)

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "a.cue"), files[0])
}

func writePipelineFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.cue"), []byte(content), 0o644))
}
