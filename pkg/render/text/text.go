// Package text renders a single example as a fixed-width plain-text report.
//
// The report lists the used curves, the blow-ups that were not contracted,
// the extra blow-ups, and each resulting chain or fork with its negated
// self-intersections and discrepancies over the chain's denominator. When an
// analysis result is supplied, the projected intersection matrix, its
// determinant and the invariants after contraction follow.
package text

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

const indent = "        "

// Options configures [Render].
type Options struct {
	// Precision is the number of decimals of the rounded c1²/c2.
	Precision int
}

// Render writes the report of ex to w. res may be nil, in which case the
// matrix and invariant blocks are omitted.
func Render(w io.Writer, g *divisor.Graph, ex *record.Example, res *analysis.Result, opts Options) error {
	var b strings.Builder
	if err := writeHeader(&b, ex); err != nil {
		return err
	}
	writeUsed(&b, g, ex)
	writeBlowups(&b, g, ex)

	switch ex.Shape {
	case record.ShapeSingleChain:
		b.WriteString("    Resulting chain with self intersections and discrepancies:\n")
		writeChain(&b, g, ex, ex.Chains[0])
	case record.ShapeDoubleChain:
		writeTwoChains(&b, g, ex)
	case record.ShapePExtremal:
		if ex.Original != nil {
			b.WriteString("    Original chain with self intersections:\n")
			writeOriginal(&b, g, ex)
			b.WriteString("\n")
		}
		writeTwoChains(&b, g, ex)
	case record.ShapeSingleQHD:
		if err := writeFork(&b, g, ex); err != nil {
			return err
		}
	case record.ShapeDoubleQHD:
		if err := writeFork(&b, g, ex); err != nil {
			return err
		}
		b.WriteString("\n    Resulting chain with self intersections and discrepancies:\n")
		writeChain(&b, g, ex, ex.Chains[0])
	}

	if res != nil {
		b.WriteString("\n")
		writeMatrix(&b, g, res)
		b.WriteString("\n")
		writeInvariants(&b, g, res, opts.Precision)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, ex *record.Example) error {
	sing := ex.Singularities()
	switch ex.Shape {
	case record.ShapeSingleChain:
		s := sing[0]
		fmt.Fprintf(b, "Example with K^2 = %d, (n,a) = (%d,%d), length = %d\n", ex.K2, s.N, s.A, s.Length)
	case record.ShapeDoubleChain:
		fmt.Fprintf(b, "Example with two chains K^2 = %d:\n", ex.K2)
		writePairs(b, sing)
		b.WriteString("\n")
	case record.ShapePExtremal:
		fmt.Fprintf(b, "Example by P-extremal resolution K^2 = %d, Delta = %d, Omega = %d\n", ex.K2, ex.Delta, ex.Omega)
		writePairs(b, sing)
		b.WriteString("\n")
	case record.ShapeSingleQHD:
		q := ex.QHD
		fmt.Fprintf(b, "Example of single QHD with K^2 = %d, type %s, (p,q,r) = (%d,%d,%d), denominator = %d, length = %d\n",
			ex.K2, q.Type, q.P, q.Q, q.R, q.N, ex.ForkLength())
	case record.ShapeDoubleQHD:
		q, s := ex.QHD, sing[0]
		fmt.Fprintf(b, "Example of QHD and chain with K^2 = %d:\n", ex.K2)
		fmt.Fprintf(b, "QHD: Type %s, (p,q,r) = (%d,%d,%d), denominator = %d, length = %d.\n",
			q.Type, q.P, q.Q, q.R, q.N, ex.ForkLength())
		fmt.Fprintf(b, "Chain: (n,a) = (%d,%d), length = %d\n", s.N, s.A, s.Length)
	default:
		return fmt.Errorf("example %d: %w: %v", ex.Index, record.ErrUnknownShape, ex.Shape)
	}
	return nil
}

func writePairs(b *strings.Builder, sing []record.Singularity) {
	for i, s := range sing {
		fmt.Fprintf(b, "    (n%d,a%d) = (%d,%d), length = %d\n", i+1, i+1, s.N, s.A, s.Length)
	}
}

func writeUsed(b *strings.Builder, g *divisor.Graph, ex *record.Example) {
	b.WriteString("    Used curves:\n      ")
	for _, c := range ex.Used {
		b.WriteString("  " + g.Name(c))
	}
	b.WriteString("\n\n")
}

// writeBlowups lists the exceptional curves that survive, with the used
// curves they meet, then the example's own blow-ups and extra blow-ups.
func writeBlowups(b *strings.Builder, g *divisor.Graph, ex *record.Example) {
	b.WriteString("    Blowups:\n")
	for _, e := range g.Exceptional {
		if slices.Contains(ex.Blowdowns, e) {
			continue
		}
		var meets []string
		maybeMissing := false
		for _, c := range g.Adjacency[e] {
			if slices.Contains(ex.Used, c) {
				meets = append(meets, g.Name(c))
			}
			if slices.Contains(ex.Blowdowns, c) {
				maybeMissing = true
			}
		}
		b.WriteString(indent + strings.Join(meets, " - ") + " =: " + g.Name(e))
		if maybeMissing {
			b.WriteString("(Maybe missing some intersections)")
		}
		b.WriteString("\n")
	}
	for _, p := range ex.Connections {
		fmt.Fprintf(b, "%s%s - %s\n", indent, ex.Label(g, p[0]), ex.Label(g, p[1]))
	}
	for _, x := range ex.ExtraBlowups() {
		fmt.Fprintf(b, "    Needed %d extra blowups at %s - %s\n", x.Count, ex.Label(g, x.A), ex.Label(g, x.B))
	}
	b.WriteString("\n")
}

func writeTwoChains(b *strings.Builder, g *divisor.Graph, ex *record.Example) {
	b.WriteString("    First chain with self intersections and discrepancies:\n")
	writeChain(b, g, ex, ex.Chains[0])
	b.WriteString("\n    Second chain with self intersections and discrepancies:\n")
	writeChain(b, g, ex, ex.Chains[1])
}

// column holds the three cells printed for one curve of a chain.
type column struct {
	name, selfInt, disc string
}

func (c column) width() int {
	return max(runeLen(c.name), runeLen(c.selfInt), runeLen(c.disc))
}

func columns(g *divisor.Graph, ex *record.Example, curves []int, selfInt []int64, n int64) []column {
	cols := make([]column, len(curves))
	for i, c := range curves {
		cols[i] = column{
			name:    ex.Label(g, c),
			selfInt: strconv.FormatInt(-selfInt[c], 10),
		}
		if n != 0 {
			cols[i].disc = fmt.Sprintf("%d / %d", ex.Discrepancies[c], n)
		}
	}
	return cols
}

func writeChain(b *strings.Builder, g *divisor.Graph, ex *record.Example, c record.Chain) {
	cols := columns(g, ex, c.Curves, ex.SelfInt, c.N)
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = col.width()
	}
	writeColumns(b, cols, widths, true)
}

func writeOriginal(b *strings.Builder, g *divisor.Graph, ex *record.Example) {
	cols := columns(g, ex, ex.Original.Curves, ex.OriginalSelfInt, 0)
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = max(runeLen(col.name), runeLen(col.selfInt))
	}
	writeColumns(b, cols, widths, false)
}

func writeColumns(b *strings.Builder, cols []column, widths []int, withDisc bool) {
	row := func(sep string, cell func(column) string) string {
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = center(cell(col), widths[i])
		}
		return strings.Join(parts, sep)
	}
	b.WriteString(indent + "C=  " + row(" - ", func(c column) string { return c.name }) + "\n")
	b.WriteString(indent + "S=  " + row(" , ", func(c column) string { return c.selfInt }) + "\n")
	if withDisc {
		b.WriteString(indent + "d=[ " + row(" , ", func(c column) string { return c.disc }) + " ]\n")
	}
}

// writeFork prints the three branches of a QHD fork. Columns are aligned by
// position across the branches.
func writeFork(b *strings.Builder, g *divisor.Graph, ex *record.Example) error {
	fork, err := ex.Fork()
	if err != nil {
		return fmt.Errorf("example %d: %w", ex.Index, err)
	}
	var branches [3][]column
	var widths []int
	for i, branch := range fork {
		branches[i] = columns(g, ex, branch, ex.SelfInt, ex.QHD.N)
		for j, col := range branches[i] {
			if j == len(widths) {
				widths = append(widths, 0)
			}
			widths[j] = max(widths[j], col.width())
		}
	}

	bar := indent + "    " + center("|", firstOr(widths, 0)) + "\n"
	b.WriteString("    Resulting QHD with self intersections and discrepancies:\n")
	for i, cols := range branches {
		if i > 0 {
			b.WriteString("\n" + bar + "\n")
		}
		writeColumns(b, cols, widths[:len(cols)], true)
	}
	return nil
}

func writeMatrix(b *strings.Builder, g *divisor.Graph, res *analysis.Result) {
	names := make([]string, len(res.BaseUsed))
	widths := make([]int, len(res.BaseUsed))
	nameWidth := 0
	for j, c := range res.BaseUsed {
		names[j] = g.Name(c)
		nameWidth = max(nameWidth, runeLen(names[j]))
		widths[j] = runeLen(names[j])
		for i := range res.Matrix {
			widths[j] = max(widths[j], len(strconv.FormatInt(res.Matrix[i][j], 10)))
		}
	}

	head := make([]string, len(names))
	for j, n := range names {
		head[j] = center(n, widths[j])
	}
	b.WriteString("    Intersection matrix of base curves:\n\n")
	b.WriteString(indent + center("", nameWidth) + "   " + strings.Join(head, " - ") + "\n")
	for i, row := range res.Matrix {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = center(strconv.FormatInt(v, 10), widths[j])
		}
		b.WriteString(indent + center(names[i], nameWidth) + " | " + strings.Join(cells, "   ") + " | \n")
	}
	fmt.Fprintf(b, "\n    Determinant: %d.\n", res.Determinant)
}

func writeInvariants(b *strings.Builder, g *divisor.Graph, res *analysis.Result, prec int) {
	bd := res.Blowdown
	if !bd.NormalCrossing {
		b.WriteString("    Invariants: undefined, the contraction is not normal crossing")
		if bd.StoppedAt >= 0 {
			b.WriteString(" at " + g.Name(bd.StoppedAt))
		}
		b.WriteString(".\n")
		return
	}
	inv := res.Invariants
	fmt.Fprintf(b, "    Invariants after %d contractions (K^2 = %d):\n", bd.Contracted, bd.RevisedK2)
	fmt.Fprintf(b, "%sP = %d, K = %d\n", indent, inv.P, inv.K)
	fmt.Fprintf(b, "%sc1^2 = %d, c2 = %d, c1^2/c2 = %s", indent, inv.C1Sq, inv.C2, inv.Ratio())
	if r, ok := inv.Rounded(prec); ok {
		fmt.Fprintf(b, " (%s)", r)
	}
	b.WriteString("\n")
	if len(inv.Surviving) > 0 {
		names := make([]string, len(inv.Surviving))
		for i, e := range inv.Surviving {
			names[i] = g.Name(e)
		}
		fmt.Fprintf(b, "%sSurviving exceptional curves: %s\n", indent, strings.Join(names, ", "))
	}
}

// center pads s on both sides to width w, putting the odd space on the
// right.
func center(s string, w int) string {
	n := runeLen(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-n-left)
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func firstOr(s []int, def int) int {
	if len(s) == 0 {
		return def
	}
	return s[0]
}
