package cli

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/registry"
)

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	Database string
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register <pipeline-dir>",
		Short: "Register the pipeline's dataset types",
		Long: `Register every dataset type the pipeline consumes or produces.

Registration is required before the first dataset of a type can be
persisted; a connection-name typo then fails loudly at persist time
instead of silently creating a new output type.

Example:
  quanta register --db ./registry.db ./pipelines/demo`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to registry database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRegister(opts *RegisterOptions, pipelineDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	p, name, err := LoadPipeline(pipelineDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load pipeline", err)
	}
	slog.Info("pipeline loaded", "pipeline", name, "tasks", len(p))

	reg, err := registry.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open registry", err)
	}
	defer reg.Close()

	// One registration per distinct resolved type name across all
	// connections of all tasks.
	types := make(map[dataset.TypeName]string)
	for _, t := range p {
		bound, err := t.Bind(nil)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to bind task %s", t.Label), err)
		}
		for _, id := range bound.Identifiers() {
			conn, _ := bound.Get(id)
			types[conn.TypeName] = conn.StorageClass
		}
	}

	names := make([]string, 0, len(types))
	for n := range types {
		names = append(names, string(n))
	}
	sort.Strings(names)

	ctx := cmd.Context()
	for _, n := range names {
		t := dataset.Type{Name: dataset.TypeName(n), StorageClass: types[dataset.TypeName(n)]}
		if err := reg.RegisterDatasetType(ctx, t); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to register dataset type %s", n), err)
		}
		slog.Debug("dataset type registered", "type", n, "storage_class", t.StorageClass)
	}

	return formatter.Success(
		fmt.Sprintf("registered %d dataset type(s): %s", len(names), strings.Join(names, ", ")),
		map[string]any{"pipeline": name, "types": names},
	)
}
