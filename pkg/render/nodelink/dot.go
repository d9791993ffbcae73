package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Used curves are filled; the others are drawn in grey.
	Used []int

	// Hide lists curves left out of the diagram, such as curves deleted by
	// a blow-down.
	Hide []int

	// Detailed adds the curve index and the self-intersection of base
	// curves to the labels.
	Detailed bool
}

// ToDOT converts a divisor graph to Graphviz DOT source.
func ToDOT(g *divisor.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", fillcolor=white, fontsize=18];\n")
	buf.WriteString("\n")

	shown := func(c int) bool { return !slices.Contains(opts.Hide, c) }
	for c := range g.Len() {
		if !shown(c) {
			continue
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", c, strings.Join(nodeAttrs(g, c, opts), ", "))
	}

	buf.WriteString("\n")
	for a := range g.Len() {
		if !shown(a) {
			continue
		}
		seen := make(map[int]bool)
		for _, b := range g.Adjacency[a] {
			if b <= a || seen[b] || !shown(b) {
				continue
			}
			seen[b] = true
			if m := g.Multiplicity(a, b); m > 1 {
				fmt.Fprintf(&buf, "  %d -- %d [label=\"%d\", penwidth=2];\n", a, b, m)
			} else {
				fmt.Fprintf(&buf, "  %d -- %d;\n", a, b)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(g *divisor.Graph, c int, detailed bool) string {
	label := g.Name(c)
	if detailed {
		label += " #" + strconv.Itoa(c)
	}
	if g.IsExceptional(c) || detailed {
		label += "\n" + strconv.FormatInt(g.SelfInt[c], 10)
	}
	return label
}

func nodeAttrs(g *divisor.Graph, c int, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(g, c, opts.Detailed))}
	if g.IsExceptional(c) {
		attrs = append(attrs, "shape=ellipse")
	} else {
		attrs = append(attrs, "shape=box")
	}
	if len(opts.Used) > 0 && !slices.Contains(opts.Used, c) {
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=grey40", "style=\"filled,dashed\"")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
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

// normalizeViewBox rewrites the root element so the diagram scales from a
// zero origin with its natural size.
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
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source to PDF via SVG.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source to PNG via SVG at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
