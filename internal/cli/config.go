package cli

import (
	"fmt"
	"strings"

	"github.com/quantaforge/quanta/internal/pipeline"
	"github.com/quantaforge/quanta/internal/taskconfig"
)

// parseConfigOverlays parses repeated --config label=file.yaml values
// and loads each file. Several entries for the same label merge in flag
// order, later files winning.
func parseConfigOverlays(entries []string) (map[string]*taskconfig.Config, error) {
	overlays := make(map[string]*taskconfig.Config, len(entries))
	for _, entry := range entries {
		label, path, ok := strings.Cut(entry, "=")
		if !ok || label == "" || path == "" {
			return nil, fmt.Errorf("invalid --config value %q: want label=file.yaml", entry)
		}
		cfg, err := taskconfig.Load(path)
		if err != nil {
			return nil, err
		}
		overlays[label] = overlays[label].Merge(cfg)
	}
	return overlays, nil
}

// applyConfigOverlays merges each overlay over the matching task's
// pipeline-declared config. An overlay naming no task is an error.
func applyConfigOverlays(p pipeline.Pipeline, overlays map[string]*taskconfig.Config) error {
	for label, overlay := range overlays {
		found := false
		for _, t := range p {
			if t.Label == label {
				t.Config = t.Config.Merge(overlay)
				found = true
			}
		}
		if !found {
			return fmt.Errorf("no task labeled %q in pipeline", label)
		}
	}
	return nil
}
