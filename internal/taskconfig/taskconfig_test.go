package taskconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
connections:
  calexp: special_calexp
templates:
  coaddName: goodSeeing
options:
  doWriteSources: false
`))

	require.NoError(t, err)
	assert.Equal(t, "special_calexp", cfg.Connections["calexp"])
	assert.Equal(t, "goodSeeing", cfg.Templates["coaddName"])
	assert.False(t, cfg.Options["doWriteSources"])
}

func TestParse_UnknownFieldFails(t *testing.T) {
	_, err := Parse([]byte("tempaltes:\n  coaddName: deep\n"))

	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  coaddName: deep\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "deep", cfg.Templates["coaddName"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func TestConfig_Merge(t *testing.T) {
	base := &Config{
		Templates: map[string]string{"coaddName": "deep", "warpType": "direct"},
		Options:   map[string]bool{"doWriteSources": true},
	}
	override := &Config{
		Templates:   map[string]string{"coaddName": "goodSeeing"},
		Connections: map[string]string{"calexp": "special_calexp"},
	}

	merged := base.Merge(override)

	assert.Equal(t, "goodSeeing", merged.Templates["coaddName"])
	assert.Equal(t, "direct", merged.Templates["warpType"])
	assert.Equal(t, "special_calexp", merged.Connections["calexp"])
	assert.True(t, merged.Options["doWriteSources"])

	// Inputs are untouched.
	assert.Equal(t, "deep", base.Templates["coaddName"])

	// Merging nil copies.
	copied := base.Merge(nil)
	assert.Equal(t, base.Templates, copied.Templates)
}

func TestConfig_BindConfig(t *testing.T) {
	cfg := &Config{
		Connections: map[string]string{"calexp": "x"},
		Templates:   map[string]string{"coaddName": "deep"},
		Options:     map[string]bool{"flag": true},
	}

	bc := cfg.BindConfig()
	assert.Equal(t, cfg.Connections, bc.Names)
	assert.Equal(t, cfg.Templates, bc.Templates)
	assert.Equal(t, cfg.Options, bc.Options)

	var nilCfg *Config
	assert.Empty(t, nilCfg.BindConfig().Names)
}
