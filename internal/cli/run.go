package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantaforge/quanta/internal/connection"
	"github.com/quantaforge/quanta/internal/exec"
	"github.com/quantaforge/quanta/internal/pipeline"
	"github.com/quantaforge/quanta/internal/registry"
	"github.com/quantaforge/quanta/internal/resolve"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Configs  []string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <pipeline-dir>",
		Short: "Resolve and execute the pipeline against the registry",
		Long: `Order the pipeline, resolve each task's quanta against the registry,
and execute them in order with a built-in echo task body. Each output
dataset records the producing task, the quantum data ID, and the names
of the inputs it consumed, so downstream tasks resolve against real
registry contents.

Example:
  quanta run --db ./registry.db ./pipelines/demo
  quanta run --db ./registry.db --config calibrate=./calibrate.yaml ./pipelines/demo`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to registry database (required)")
	cmd.Flags().StringArrayVar(&opts.Configs, "config", nil, "label=file.yaml overlay merged over the task's pipeline config (repeatable)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// executionReport is the JSON rendering of one executed quantum.
type executionReport struct {
	Task      string `json:"task"`
	RunToken  string `json:"run_token"`
	DataID    string `json:"data_id"`
	Fetched   int    `json:"fetched"`
	Persisted int    `json:"persisted"`
}

func runRun(opts *RunOptions, pipelineDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	p, name, err := LoadPipeline(pipelineDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load pipeline", err)
	}
	overlays, err := parseConfigOverlays(opts.Configs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load task config", err)
	}
	// Overlays apply before ordering: a connection rename can change the
	// dependency graph.
	if err := applyConfigOverlays(p, overlays); err != nil {
		return WrapExitError(ExitCommandError, "failed to apply task config", err)
	}
	ordered, err := pipeline.Order(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "pipeline is not orderable", err)
	}

	reg, err := registry.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open registry", err)
	}
	defer reg.Close()

	ctx := cmd.Context()
	if err := registerOutputTypes(ctx, reg, ordered); err != nil {
		return WrapExitError(ExitCommandError, "failed to register output dataset types", err)
	}

	resolver := resolve.New(reg)
	runner := exec.NewRunner(reg)

	var reports []executionReport
	for _, t := range ordered {
		bound, err := t.Bind(nil)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to bind task %s", t.Label), err)
		}
		result, err := resolver.Resolve(ctx, bound, nil)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to resolve task %s", t.Label), err)
		}
		if errs := result.Err(); errs != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("task %s has missing prerequisites", t.Label), errs)
		}

		task := echoTask(t.Label, bound)
		for _, q := range result.Quanta {
			run, err := runner.Execute(ctx, q, bound, task)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("task %s failed on quantum %s", t.Label, q.DataID()), err)
			}
			reports = append(reports, executionReport{
				Task:      t.Label,
				RunToken:  run.RunToken,
				DataID:    q.DataID().String(),
				Fetched:   run.Fetched,
				Persisted: run.Persisted,
			})
		}
	}

	text := renderExecutions(reports)
	return formatter.Success(text, map[string]any{"pipeline": name, "executions": reports})
}

// registerOutputTypes registers the output dataset types of every task
// so execution can persist into a registry seeded only with inputs.
func registerOutputTypes(ctx context.Context, reg *registry.Registry, p pipeline.Pipeline) error {
	for _, t := range p {
		bound, err := t.Bind(nil)
		if err != nil {
			return err
		}
		for _, id := range bound.Outputs() {
			conn, _ := bound.Get(id)
			if err := reg.RegisterDatasetType(ctx, conn.Type()); err != nil {
				return err
			}
		}
	}
	return nil
}

// echoTask builds the built-in task body used by run. It produces, for
// every surviving output connection, a record naming the task, the
// quantum data ID, and the input identifiers it saw. Multiple-valued
// outputs get one record per predicted reference.
func echoTask(label string, bound *connection.Bound) exec.Task {
	return exec.TaskFunc(func(ctx context.Context, in exec.Inputs) (map[string]any, error) {
		q := in.Quantum()
		consumed := make([]string, 0)
		for _, id := range q.Connections() {
			conn, ok := bound.Get(id)
			if !ok || !conn.Role.IsInput() {
				continue
			}
			consumed = append(consumed, id)
		}

		record := map[string]any{
			"task":     label,
			"data_id":  q.DataID().String(),
			"consumed": consumed,
		}

		outputs := make(map[string]any)
		for _, id := range bound.Outputs() {
			refs := q.Refs(id)
			if len(refs) == 0 {
				continue
			}
			conn, _ := bound.Get(id)
			if conn.Multiple {
				values := make([]any, len(refs))
				for i := range refs {
					values[i] = record
				}
				outputs[id] = values
			} else {
				outputs[id] = record
			}
		}
		return outputs, nil
	})
}

// renderExecutions builds the human-readable execution listing.
func renderExecutions(reports []executionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "executed %d quanta\n", len(reports))
	for _, r := range reports {
		fmt.Fprintf(&b, "  %s %s run=%s fetched=%d persisted=%d\n",
			r.Task, r.DataID, r.RunToken, r.Fetched, r.Persisted)
	}
	return strings.TrimRight(b.String(), "\n")
}
