package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxlab/flowsheet/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output   string  // output file path; empty writes to stdout
	xSpacing float64 // horizontal spacing between layers
	ySpacing float64 // vertical spacing between row slots
	noCache  bool    // disable result caching
	refresh  bool    // recompute even when cached results exist
}

// layoutCommand creates the layout command for exporting raw positions.
// The output is the position map as JSON, keyed by component name. It is
// the same document the diagram command embeds, useful for downstream
// tooling that draws its own shapes.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{}

	cmd := &cobra.Command{
		Use:   "layout [snapshot]",
		Short: "Compute component positions and export them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64Var(&opts.xSpacing, "x-spacing", 0, "horizontal spacing between layers")
	cmd.Flags().Float64Var(&opts.ySpacing, "y-spacing", 0, "vertical spacing between row slots")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached results exist")

	return cmd
}

// runLayout executes the pipeline up to the layout stage and writes the
// position JSON. Rendering is limited to the json format so no Graphviz
// work happens on this path.
func (c *CLI) runLayout(ctx context.Context, input string, opts *layoutOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	pOpts := c.pipelineOptions()
	pOpts.SnapshotPath = input
	pOpts.Formats = []string{pipeline.FormatJSON}
	pOpts.Refresh = opts.refresh
	if opts.xSpacing != 0 {
		pOpts.XSpacing = opts.xSpacing
	}
	if opts.ySpacing != 0 {
		pOpts.YSpacing = opts.ySpacing
	}

	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		return err
	}
	logger.Debugf("Placed %d components", len(result.Positions))

	data := result.Artifacts[pipeline.FormatJSON]
	if opts.output == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := writeArtifact(opts.output, data); err != nil {
		return err
	}

	printSuccess("Computed layout for %s", result.Snapshot.Name)
	printKeyValue("snapshot", result.SnapshotHash[:12])
	printKeyValue("placed", fmt.Sprintf("%d components", len(result.Positions)))
	printFile(opts.output)
	return nil
}
