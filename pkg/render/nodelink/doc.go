// Package nodelink renders divisor graphs as node-link diagrams.
//
// Base curves are drawn as boxes and exceptional curves as ellipses labelled
// with their self-intersection. Two curves meeting more than once share one
// edge labelled with the intersection multiplicity.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Used: ex.Used})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use [RenderPDF] and [RenderPNG]. Both require
// librsvg (rsvg-convert).
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
