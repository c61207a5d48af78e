// Package render exports scene graphs as static diagrams.
//
// The renderer is an offline companion to the live geometry pass: containers
// become Graphviz clusters, nodes become boxes, and edges keep their port
// bindings as label hints. Output formats are DOT text and SVG. The live
// canvas never uses this path; it exists for export, documentation, and
// debugging of scene documents.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/canopyhq/canopy/pkg/scene"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes position and size annotations in node labels.
	// When false, only the node ID is shown.
	Detailed bool
}

// ToDOT converts a scene graph to Graphviz DOT format.
// Containers are emitted as subgraph clusters so nesting is visible in the
// output; unmeasured nodes get a dashed outline. The resulting DOT string
// can be rendered with [RenderSVG].
func ToDOT(s *scene.Scene, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph canvas {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes() {
		if n.ParentID == "" {
			writeNode(&buf, s, n, opts, 1)
		}
	}

	buf.WriteString("\n")
	for _, e := range s.Edges() {
		if e.InProgress() {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q", e.Source, e.Target)
		if label := edgeLabel(e); label != "" {
			fmt.Fprintf(&buf, " [label=%q]", label)
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, s *scene.Scene, n *scene.Node, opts Options, depth int) {
	indent := strings.Repeat("  ", depth)

	if s.IsContainer(n.ID) {
		fmt.Fprintf(buf, "%ssubgraph \"cluster_%s\" {\n", indent, n.ID)
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, n.ID)
		fmt.Fprintf(buf, "%s  style=rounded;\n", indent)
		for _, childID := range s.Children(n.ID) {
			if child, ok := s.Node(childID); ok {
				writeNode(buf, s, child, opts, depth+1)
			}
		}
		fmt.Fprintf(buf, "%s}\n", indent)
		return
	}

	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed))}
	if !n.Initialized() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
}

func nodeLabel(n *scene.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{fmt.Sprintf("at: (%g, %g)", n.Position.X, n.Position.Y)}
	if n.Size != nil {
		parts = append(parts, fmt.Sprintf("size: %gx%g", n.Size.Width, n.Size.Height))
	} else {
		parts = append(parts, "unmeasured")
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

func edgeLabel(e scene.Edge) string {
	switch {
	case e.SourcePort != "" && e.TargetPort != "":
		return e.SourcePort + " -> " + e.TargetPort
	case e.SourcePort != "":
		return e.SourcePort
	case e.TargetPort != "":
		return e.TargetPort
	default:
		return ""
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the viewBox starts at
// the origin. Graphviz emits translated viewBoxes that break naive embedding.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
