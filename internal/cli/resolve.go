package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantaforge/quanta/internal/dimension"
	"github.com/quantaforge/quanta/internal/registry"
	"github.com/quantaforge/quanta/internal/resolve"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Database string
	Task     string
	Configs  []string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <pipeline-dir>",
		Short: "Resolve runnable quanta against the registry",
		Long: `Resolve which quanta are runnable for each task of the pipeline given
the datasets currently in the registry, and print the listing.

Missing prerequisites are hard failures and set a non-zero exit code;
candidates dropped for missing ordinary inputs are only logged.

Example:
  quanta resolve --db ./registry.db ./pipelines/demo
  quanta resolve --db ./registry.db --task calibrate ./pipelines/demo
  quanta resolve --db ./registry.db --config calibrate=./calibrate.yaml ./pipelines/demo`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to registry database (required)")
	cmd.Flags().StringVar(&opts.Task, "task", "", "resolve only the task with this label")
	cmd.Flags().StringArrayVar(&opts.Configs, "config", nil, "label=file.yaml overlay merged over the task's pipeline config (repeatable)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// quantumReport is the JSON rendering of one resolved quantum.
type quantumReport struct {
	Task        string              `json:"task"`
	DataID      dimension.DataID    `json:"data_id"`
	Connections map[string][]string `json:"connections"`
}

// taskReport is the JSON rendering of one task's resolution outcome.
type taskReport struct {
	Task     string          `json:"task"`
	Quanta   []quantumReport `json:"quanta"`
	Dropped  int             `json:"dropped,omitempty"`
	Failures []string        `json:"failures,omitempty"`
}

func runResolve(opts *ResolveOptions, pipelineDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	p, name, err := LoadPipeline(pipelineDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load pipeline", err)
	}
	overlays, err := parseConfigOverlays(opts.Configs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load task config", err)
	}
	if err := applyConfigOverlays(p, overlays); err != nil {
		return WrapExitError(ExitCommandError, "failed to apply task config", err)
	}

	reg, err := registry.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open registry", err)
	}
	defer reg.Close()

	resolver := resolve.New(reg)
	ctx := cmd.Context()

	var reports []taskReport
	failed := false
	for _, t := range p {
		if opts.Task != "" && t.Label != opts.Task {
			continue
		}
		bound, err := t.Bind(nil)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to bind task %s", t.Label), err)
		}
		result, err := resolver.Resolve(ctx, bound, nil)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to resolve task %s", t.Label), err)
		}

		report := taskReport{Task: t.Label, Dropped: result.Dropped}
		for _, q := range result.Quanta {
			report.Quanta = append(report.Quanta, reportQuantum(q))
		}
		for _, f := range result.Failures {
			report.Failures = append(report.Failures, f.Error())
			failed = true
		}
		reports = append(reports, report)
	}

	if opts.Task != "" && len(reports) == 0 {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no task labeled %q in pipeline", opts.Task), nil)
	}

	text := renderReports(reports)
	if err := formatter.Success(text, map[string]any{"pipeline": name, "tasks": reports}); err != nil {
		return err
	}
	if failed {
		return WrapExitError(ExitFailure, "resolution reported missing prerequisites", nil)
	}
	return nil
}

// reportQuantum converts a quantum to its report form.
func reportQuantum(q *resolve.Quantum) quantumReport {
	report := quantumReport{
		Task:        q.Task(),
		DataID:      q.DataID(),
		Connections: make(map[string][]string),
	}
	for _, id := range q.Connections() {
		refs := q.Refs(id)
		rendered := make([]string, len(refs))
		for i, ref := range refs {
			rendered[i] = ref.String()
		}
		report.Connections[id] = rendered
	}
	return report
}

// renderReports builds the human-readable resolution listing.
func renderReports(reports []taskReport) string {
	var b strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&b, "task %s: %d quanta", r.Task, len(r.Quanta))
		if r.Dropped > 0 {
			fmt.Fprintf(&b, " (%d dropped)", r.Dropped)
		}
		b.WriteByte('\n')
		for _, q := range r.Quanta {
			fmt.Fprintf(&b, "  quantum %v\n", q.DataID)
		}
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  FAILED: %s\n", f)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
