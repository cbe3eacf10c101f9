package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantaforge/quanta/internal/pipeline"
)

// OrderOptions holds flags for the order command.
type OrderOptions struct {
	*RootOptions
	Check bool
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "order <pipeline-dir>",
		Short: "Order pipeline tasks by data dependencies",
		Long: `Re-order the pipeline so every dataset type is produced before it is
consumed, preserving the declared relative order where possible.
With --check, only verify the declared order and fail when it is wrong.

Example:
  quanta order ./pipelines/demo
  quanta order --check ./pipelines/demo`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "verify the declared order instead of re-ordering")

	return cmd
}

func runOrder(opts *OrderOptions, pipelineDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	p, name, err := LoadPipeline(pipelineDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load pipeline", err)
	}

	if opts.Check {
		ok, err := pipeline.IsOrdered(p)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to check pipeline order", err)
		}
		if !ok {
			_ = formatter.Error("pipeline is not ordered")
			return WrapExitError(ExitFailure, "pipeline is not ordered", nil)
		}
		return formatter.Success("pipeline is ordered", map[string]any{"pipeline": name, "ordered": true})
	}

	ordered, err := pipeline.Order(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to order pipeline", err)
	}

	labels := ordered.Labels()
	return formatter.Success(
		fmt.Sprintf("order: %s", strings.Join(labels, " -> ")),
		map[string]any{"pipeline": name, "order": labels},
	)
}
