package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/dimension"
	"github.com/quantaforge/quanta/internal/pipeline"
	"github.com/quantaforge/quanta/internal/taskconfig"
)

// Load error codes.
const (
	ErrCodeNotFound    = "E_NOT_FOUND"
	ErrCodeNoFiles     = "E_NO_FILES"
	ErrCodeLoadFailed  = "E_LOAD_FAILED"
	ErrCodeBuildFailed = "E_BUILD_FAILED"
	ErrCodeDecode      = "E_DECODE"
	ErrCodeInvalid     = "E_INVALID_PIPELINE"
)

// LoadError represents an error during pipeline loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// pipelinePath locates the pipeline declaration within the CUE value.
var pipelinePath = cue.ParsePath("pipeline")

// pipelineSpec mirrors the CUE pipeline declaration.
type pipelineSpec struct {
	Name  string     `json:"name"`
	Tasks []taskSpec `json:"tasks"`
}

type taskSpec struct {
	Task        string            `json:"task"`
	Label       string            `json:"label"`
	Dimensions  []string          `json:"dimensions"`
	Connections []connSpec        `json:"connections"`
	Templates   map[string]string `json:"templates"`
	Config      *configSpec       `json:"config"`
}

type connSpec struct {
	Identifier   string   `json:"identifier"`
	Role         string   `json:"role"`
	Name         string   `json:"name"`
	StorageClass string   `json:"storageClass"`
	Dimensions   []string `json:"dimensions"`
	Multiple     bool     `json:"multiple"`
	DeferLoad    bool     `json:"deferLoad"`
}

type configSpec struct {
	Connections map[string]string `json:"connections"`
	Templates   map[string]string `json:"templates"`
	Options     map[string]bool   `json:"options"`
}

// LoadPipeline loads and compiles a pipeline declaration from the CUE
// files in dir. The files must define a top-level `pipeline` value.
func LoadPipeline(dir string) (pipeline.Pipeline, string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("pipeline directory not found: %s", dir)}
	}
	if err != nil {
		return nil, "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing pipeline directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, "", &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, "", &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, "", &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, "", &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, "", &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	var spec pipelineSpec
	if err := value.LookupPath(pipelinePath).Decode(&spec); err != nil {
		return nil, "", &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding pipeline: %v", err)}
	}

	p, err := buildPipeline(spec)
	if err != nil {
		return nil, "", err
	}
	return p, spec.Name, nil
}

// buildPipeline turns the decoded spec into task definitions with
// validated connection declarations.
func buildPipeline(spec pipelineSpec) (pipeline.Pipeline, error) {
	if len(spec.Tasks) == 0 {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: "pipeline declares no tasks"}
	}

	seen := make(map[string]bool, len(spec.Tasks))
	p := make(pipeline.Pipeline, 0, len(spec.Tasks))
	for _, t := range spec.Tasks {
		if t.Label == "" {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("task %q has no label", t.Task)}
		}
		if seen[t.Label] {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("duplicate task label %q", t.Label)}
		}
		seen[t.Label] = true

		entries := make([]connection.Entry, 0, len(t.Connections))
		for _, c := range t.Connections {
			role, err := parseRole(c.Role)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeInvalid,
					Message: fmt.Sprintf("task %q connection %q: %v", t.Label, c.Identifier, err)}
			}
			entries = append(entries, connection.Entry{
				Identifier: c.Identifier,
				Descriptor: connection.Descriptor{
					Role:         role,
					Dimensions:   dimension.NewSet(c.Dimensions...),
					StorageClass: c.StorageClass,
					Name:         c.Name,
					Multiple:     c.Multiple,
					DeferLoad:    c.DeferLoad,
				},
			})
		}

		decl, err := connection.New(t.Label, dimension.NewSet(t.Dimensions...), entries, t.Templates)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("task %q: %v", t.Label, err)}
		}

		cfg := &taskconfig.Config{}
		if t.Config != nil {
			cfg = &taskconfig.Config{
				Connections: t.Config.Connections,
				Templates:   t.Config.Templates,
				Options:     t.Config.Options,
			}
		}

		p = append(p, &pipeline.TaskDef{
			TaskName:    t.Task,
			Label:       t.Label,
			Connections: decl,
			Config:      cfg,
		})
	}
	return p, nil
}

// parseRole maps a pipeline-file role string to a connection Role.
func parseRole(s string) (connection.Role, error) {
	switch s {
	case "input":
		return connection.RoleInput, nil
	case "prerequisiteInput":
		return connection.RolePrerequisiteInput, nil
	case "output":
		return connection.RoleOutput, nil
	case "initInput":
		return connection.RoleInitInput, nil
	case "initOutput":
		return connection.RoleInitOutput, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// FindCUEFiles returns all .cue files directly under dir, sorted by the
// directory listing order.
func FindCUEFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".cue") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
