package latex

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"

	"github.com/jereyes4/Wahl-Chains/pkg/invariant"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

// ErrPositiveCanonical is returned by [NewRealizableRow] when a used base
// curve meets the downstairs canonical class positively.
var ErrPositiveCanonical = errors.New("used curve with positive canonical intersection")

// MaxCurveType bounds the curve types counted in the e columns. A used base
// curve of type t = -2 - K·C lands in column e_t.
const MaxCurveType = 2

// RealizableRow is one line of a realizable-configuration table.
type RealizableRow struct {
	Chains int

	// Canonical counts used base curves by type, e_{-2} … e_{2}.
	Canonical [5]int64
	// Points holds t_2 … t_5 of [invariant.Record.PointCounts].
	Points [4]int64

	C1Sq, C2 int64

	Source string
	Index  int
}

// NewRealizableRow builds the row of ex from its invariants. canonical is
// [invariant.DownstairsCanonical] of the example's graph.
//
// ok is false when the example does not belong in the table: its blow-down
// is not normal crossing, a surviving curve has degree above
// [invariant.MaxPointDegree], or a used base curve has type above
// [MaxCurveType].
func NewRealizableRow(source string, ex *record.Example, inv invariant.Record, canonical []int64) (row RealizableRow, ok bool, err error) {
	points, ok := inv.PointCounts()
	if !ok {
		return RealizableRow{}, false, nil
	}
	row = RealizableRow{
		Chains: ex.Shape.ChainCount(),
		Points: points,
		C1Sq:   inv.C1Sq,
		C2:     inv.C2,
		Source: source,
		Index:  ex.Index,
	}
	for _, c := range inv.Used {
		if slices.Contains(inv.Surviving, c) {
			continue
		}
		var k int64
		if c < len(canonical) {
			k = canonical[c]
		}
		t := -2 - k
		switch {
		case t < -2:
			return RealizableRow{}, false, fmt.Errorf("example %d: curve %d: %w", ex.Index, c, ErrPositiveCanonical)
		case t > MaxCurveType:
			return RealizableRow{}, false, nil
		}
		row.Canonical[t+2]++
	}
	return row, true, nil
}

// RealizableOptions selects one table of [WriteRealizable].
type RealizableOptions struct {
	Chains    int
	K2        int64
	Precision int
}

// WriteRealizable writes the longtable of the rows with opts.Chains chains.
// Rows are sorted by their e columns, t columns and c1²/c2, and a row that
// repeats the previous one in all of those is dropped.
func WriteRealizable(w io.Writer, rows []RealizableRow, opts RealizableOptions) error {
	rows = slices.DeleteFunc(slices.Clone(rows), func(r RealizableRow) bool { return r.Chains != opts.Chains })
	slices.SortStableFunc(rows, compareRealizable)

	var b strings.Builder
	b.WriteString("%\\usepackage{longtable}\n")
	b.WriteString(realizableHeader(opts))

	var last string
	first := true
	for _, r := range rows {
		key := fmt.Sprintf("%d & %d & %d & %d & %d & %d & %d & %d & %d & %s",
			r.Canonical[0], r.Canonical[1], r.Canonical[2], r.Canonical[3], r.Canonical[4],
			r.Points[0], r.Points[1], r.Points[2], r.Points[3],
			ratioCell(r, opts.Precision))
		if !first && key == last {
			continue
		}
		if !first {
			b.WriteString("\\\\\n")
		}
		first = false
		last = key
		fmt.Fprintf(&b, "%s & \\texttt{%s} -- %d", key, escape(r.Source), r.Index)
	}
	b.WriteString("\n\\end{longtable}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func realizableHeader(opts RealizableOptions) string {
	title := "1 chain"
	if opts.Chains == 2 {
		title = "2 chains"
	}
	values := "$e_{-2}$ & $e_{-1}$ & $e_{0}$ & $e_{1}$ & $e_{2}$ & $t_2$ & $t_3$ & $t_4$ & $t_5$ & $\\overline c_1^2 / \\overline c_2$ & ID\\\\\n"

	var h strings.Builder
	h.WriteString("\\begin{longtable}{|c|c|c|c|c||||c|c|c|c||||c||||c|}\n\\hline\n")
	fmt.Fprintf(&h, "\\multicolumn{11}{|c|}{Realizable configurations, %s, $K^2 = %d$}\\\\\n", title, opts.K2)
	h.WriteString("\\hline\n" + values + "\\hline\n\\endfirsthead\n\n")
	h.WriteString("\\hline\n" + values + "\\hline\n\\endhead\n\\hline\n\\endfoot\n\n")
	return h.String()
}

func ratioCell(r RealizableRow, prec int) string {
	if r.C2 == 0 {
		return "$\\infty$"
	}
	s, _ := invariant.NewFraction(r.C1Sq, r.C2).Decimal(prec)
	return "$" + s + "$"
}

func compareRealizable(a, b RealizableRow) int {
	if c := slices.Compare(a.Canonical[:], b.Canonical[:]); c != 0 {
		return c
	}
	if c := slices.Compare(a.Points[:], b.Points[:]); c != 0 {
		return c
	}
	if c := compareRatio(a, b); c != 0 {
		return c
	}
	return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Index, b.Index))
}

// compareRatio orders by c1²/c2 with an infinite ratio last.
func compareRatio(a, b RealizableRow) int {
	switch {
	case a.C2 == 0 || b.C2 == 0:
		return cmp.Compare(btoi(a.C2 == 0), btoi(b.C2 == 0))
	default:
		return big.NewRat(a.C1Sq, a.C2).Cmp(big.NewRat(b.C1Sq, b.C2))
	}
}

func btoi(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escape(s string) string {
	return strings.ReplaceAll(s, "_", "\\_")
}
