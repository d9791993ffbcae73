// Package render holds the presentation layers for divisor graphs and their
// analysis results.
//
// Each subpackage is a stateless renderer:
//
//   - [text]: the fixed-width report of one example
//   - [latex]: the longtable summary of a whole file
//   - [nodelink]: Graphviz diagrams of a divisor graph
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [text]: github.com/jereyes4/Wahl-Chains/pkg/render/text
// [latex]: github.com/jereyes4/Wahl-Chains/pkg/render/latex
// [nodelink]: github.com/jereyes4/Wahl-Chains/pkg/render/nodelink
package render
