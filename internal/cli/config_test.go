package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaforge/quanta/internal/dimension"
	"github.com/quantaforge/quanta/internal/registry"
)

// writeTaskConfig writes a YAML overlay file and returns its path.
func writeTaskConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseConfigOverlays(t *testing.T) {
	path := writeTaskConfig(t, "calibrate.yaml", "templates:\n  coaddName: goodSeeing\n")

	overlays, err := parseConfigOverlays([]string{"calibrate=" + path})

	require.NoError(t, err)
	require.Contains(t, overlays, "calibrate")
	assert.Equal(t, "goodSeeing", overlays["calibrate"].Templates["coaddName"])
}

func TestParseConfigOverlays_Invalid(t *testing.T) {
	_, err := parseConfigOverlays([]string{"no-equals-sign"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want label=file.yaml")

	_, err = parseConfigOverlays([]string{"calibrate=/nonexistent/cfg.yaml"})
	require.Error(t, err)
}

func TestResolveCommand_ConfigOverlayUnknownLabel(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "registry.db")
	seedDemoRegistry(t, dbPath, "1", "2")
	path := writeTaskConfig(t, "nope.yaml", "templates:\n  coaddName: goodSeeing\n")

	_, err := runCommand(t, "resolve", "--db", dbPath, "--config", "nope="+path, demoDir)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_ConfigOverlay(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "registry.db")
	seedDemoRegistry(t, dbPath, "1", "2")
	path := writeTaskConfig(t, "calibrate.yaml", "templates:\n  coaddName: goodSeeing\n")

	out, err := runCommand(t, "run", "--db", dbPath, "--config", "calibrate="+path, demoDir)
	require.NoError(t, err)
	assert.Contains(t, out, "executed 4 quanta")

	// The overlay rebinds calibrate's output template, so the run
	// persists goodSeeing_calexp instead of the declared default.
	reg, err := registry.Open(dbPath)
	require.NoError(t, err)
	defer reg.Close()

	ctx := context.Background()
	dims := dimension.NewSet("visit", "detector")

	renamed, err := reg.QueryDatasets(ctx, "goodSeeing_calexp", dims)
	require.NoError(t, err)
	assert.Len(t, renamed, 2)

	defaulted, err := reg.QueryDatasets(ctx, "deep_calexp", dims)
	require.NoError(t, err)
	assert.Empty(t, defaulted)
}
