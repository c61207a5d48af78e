package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/canopyhq/canopy/pkg/errors"
	"github.com/canopyhq/canopy/pkg/render"
	"github.com/canopyhq/canopy/pkg/scene"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // output format: dot or svg
	detailed bool   // include position and size annotations
}

// renderCommand creates the render command for exporting scene documents as
// static diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Export a scene document as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from input)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include position and size annotations")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	if err := apperrors.ValidatePath(input); err != nil {
		return err
	}
	s, err := scene.ReadDocumentFile(input)
	if err != nil {
		return err
	}
	c.Logger.Info("loaded document", "nodes", s.NodeCount(), "edges", s.EdgeCount())

	dot := render.ToDOT(s, render.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		sp := newSpinner("Rendering SVG...")
		sp.Start()
		data, err = render.RenderSVG(cmd.Context(), dot)
		sp.Stop()
		if err != nil {
			return err
		}
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}

	printSuccess("Rendered %s", opts.format)
	printFile(output)
	return nil
}
