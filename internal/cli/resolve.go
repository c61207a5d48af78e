package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/canopyhq/canopy/pkg/errors"
	"github.com/canopyhq/canopy/pkg/pipeline"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	output  string // output file path, empty for stdout
	touched string // comma-separated touched scene ids, most recent first
	noCache bool   // bypass the result cache
	stats   bool   // print pass statistics
}

// resolveCommand creates the resolve command. It reads a snapshot file, runs
// one geometry pass, and writes the resolved geometry as JSON.
//
// The snapshot file holds a scene document plus optional chrome measurements,
// touch state, and viewport:
//
//	{
//	  "document": {"nodes": [...], "edges": [...]},
//	  "chrome": {"s1": {"padding": 10, "header_height": 20}},
//	  "touched": ["s2", "s1"],
//	  "viewport": {"pan": {"x": 0, "y": 0}, "zoom": 1, "width": 1280, "height": 800}
//	}
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [snapshot]",
		Short: "Run a geometry pass over a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.touched, "touched", "", "comma-separated touched scene ids, most recent first (overrides snapshot)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print pass statistics")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, input string, opts *resolveOpts) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}

	snap, err := readSnapshot(input)
	if err != nil {
		return err
	}
	if opts.touched != "" {
		snap.Touched = strings.Split(opts.touched, ",")
	}

	runner, err := c.newRunner(cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	geo, err := runner.Resolve(cmd.Context(), snap)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d nodes, %d edges", geo.Stats.NodeCount, geo.Stats.EdgeCount))

	for _, d := range geo.Diagnostics {
		if d.Level == "error" {
			printWarning("%s: %s", d.Element, d.Message)
		} else {
			printDetail("%s: %s", d.Element, d.Message)
		}
	}

	data, err := json.MarshalIndent(geo, "", "  ")
	if err != nil {
		return err
	}

	if opts.output == "" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return err
		}
		printSuccess("Wrote geometry")
		printFile(opts.output)
	}

	if opts.stats {
		printStats(geo.Stats.NodeCount, geo.Stats.EdgeCount, geo.Stats.CacheHit)
		printKeyValue("renderable", fmt.Sprintf("%d/%d edges", geo.Stats.RenderableEdges, geo.Stats.EdgeCount))
		printKeyValue("duration", geo.Stats.Duration.String())
	}
	return nil
}

// readSnapshot loads a snapshot JSON file.
func readSnapshot(path string) (pipeline.Snapshot, error) {
	if err := apperrors.ValidatePath(path); err != nil {
		return pipeline.Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snap pipeline.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return pipeline.Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snap, nil
}
