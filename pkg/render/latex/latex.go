// Package latex writes the summary of a JSONL file as LaTeX longtables.
//
// Examples are grouped into consecutive runs sharing the same number of
// singularities and K². Each run becomes one longtable with a row per
// example. The optional columns are selected by [Options].
package latex

import (
	"fmt"
	"io"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

// Options selects the columns and grouping of the summary.
type Options struct {
	Nef         bool
	Obstruction bool
	Effective   bool
	GCD         bool // only for two singularities
	Chern       bool
	PK          bool
	Determinant bool

	// Fraction prints c1²/c2 rounded to Precision decimals instead of the
	// pair (c1², c2).
	Fraction  bool
	Precision int

	// LengthSort orders the two chains of an example by length first
	// instead of by (n, a).
	LengthSort bool

	// Base sorts each table by the used-base mask and adds a column with
	// its base-62 encoding.
	Base bool

	Subsection bool
}

// All returns options with every column the graph supports, as well as
// subsection headers.
func All() Options {
	return Options{
		Nef: true, Obstruction: true, Effective: true,
		GCD: true, Chern: true, PK: true, Determinant: true,
		Precision: 2, Subsection: true,
	}
}

// Resolve disables the columns whose check the graph did not perform and
// returns a message for each one.
func (o Options) Resolve(meta divisor.Metadata) (Options, []string) {
	var dropped []string
	if o.Nef && !meta.NefCheck {
		o.Nef = false
		dropped = append(dropped, "no nef check in graph record")
	}
	if o.Obstruction && !meta.ObstructionCheck {
		o.Obstruction = false
		dropped = append(dropped, "no obstruction check in graph record")
	}
	if o.Effective && !meta.EffectiveCheck {
		o.Effective = false
		dropped = append(dropped, "no effective check in graph record")
	}
	return o, dropped
}

// NeedsAnalysis reports whether any selected column is computed from an
// analysis result.
func (o Options) NeedsAnalysis() bool {
	return o.Chern || o.PK || o.Determinant
}

// Write writes the summary of f. results holds the analysis of each example
// in file order; it may be nil when [Options.NeedsAnalysis] is false.
func Write(w io.Writer, f *record.File, results []analysis.ExampleResult, opts Options) error {
	if opts.NeedsAnalysis() && len(results) != len(f.Examples) {
		return fmt.Errorf("summary: %d results for %d examples", len(results), len(f.Examples))
	}
	s := &summary{g: f.Graph, opts: opts, results: results}
	var b strings.Builder
	b.WriteString("%\\usepackage{longtable}\n")

	for start := 0; start < len(f.Examples); {
		first := f.Examples[start]
		end := start + 1
		for end < len(f.Examples) && sameGroup(first, f.Examples[end]) {
			end++
		}
		group := slices.Clone(f.Examples[start:end])
		if opts.Base {
			slices.SortStableFunc(group, func(a, b *record.Example) int {
				return BaseMask(f.Graph, a).Cmp(BaseMask(f.Graph, b))
			})
		}

		header, title := s.header(first.Shape.ChainCount(), first.K2)
		if opts.Subsection {
			fmt.Fprintf(&b, "\\subsection{%s}\n", title)
		}
		b.WriteString(header)
		for i, ex := range group {
			if i > 0 {
				b.WriteString("\\\\\n")
			}
			b.WriteString(s.row(ex))
		}
		b.WriteString("\n\\end{longtable}\n")
		start = end
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sameGroup(a, b *record.Example) bool {
	return a.Shape.ChainCount() == b.Shape.ChainCount() && a.K2 == b.K2
}

type summary struct {
	g       *divisor.Graph
	opts    Options
	results []analysis.ExampleResult
}

func (s *summary) header(chains int, k2 int64) (string, string) {
	o := s.opts
	columns := 2*chains + 1
	title := "1 chain"
	if chains == 2 {
		title = "2 chains"
	}
	title += fmt.Sprintf(", \\(K^2 = %d\\)", k2)

	var v strings.Builder
	v.WriteString(strings.Repeat("$(n,a)$ & Len & ", chains))
	add := func(on bool, name string) {
		if on {
			v.WriteString(name + " & ")
			columns++
		}
	}
	add(chains == 2 && o.GCD, "GCD")
	add(o.Nef, "Nef")
	add(o.Effective, "$\\mathbb Q$-ef")
	add(o.Obstruction, "Obs 0")
	if o.Fraction {
		add(o.Chern, "$\\overline c_1^2 / \\overline c_2$")
	} else {
		add(o.Chern, "$(\\overline c_1^2,\\overline c_2)$")
	}
	add(o.PK, "$(P,K)$")
	add(o.Determinant, "Det")
	add(chains == 2, "WH")
	v.WriteString("Index")
	if o.Base {
		v.WriteString(" & Base Config")
		columns++
	}
	values := v.String()

	var h strings.Builder
	fmt.Fprintf(&h, "\\begin{longtable}{%s}\n", strings.Repeat("|c", columns)+"|")
	h.WriteString("\\hline\n")
	fmt.Fprintf(&h, "\\multicolumn{%d}{|c|}{%s}\\\\\n", columns, title)
	h.WriteString("\\hline\n")
	h.WriteString(values + "\\\\\n")
	h.WriteString("\\hline\n\\endfirsthead\n\n\\hline\n")
	h.WriteString(values + "\\\\\n")
	h.WriteString("\\hline\n\\endhead\n\\hline\n\\endfoot\n\n")
	return h.String(), title
}

func (s *summary) row(ex *record.Example) string {
	o := s.opts
	var b strings.Builder
	cell := func(format string, args ...any) {
		fmt.Fprintf(&b, format+" & ", args...)
	}
	yesNo := func(v bool) {
		if v {
			cell("YES")
		} else {
			cell("NO")
		}
	}

	if ex.QHD != nil {
		q := ex.QHD
		cell("$(%s;%d,%d,%d;%d)$ & %d", q.Type, q.P, q.Q, q.R, q.N, ex.ForkLength())
		for _, sg := range ex.Singularities() {
			cell("$(%d,%d)$ & %d", sg.N, sg.A, sg.Length)
		}
	} else {
		for _, sg := range s.orderedPair(ex) {
			cell("$(%d,%d)$ & %d", sg.N, sg.A, sg.Length)
		}
	}

	two := ex.Shape.ChainCount() == 2
	if two && o.GCD {
		cell("%d", gcd(denominators(ex)...))
	}
	if o.Nef {
		yesNo(ex.Nef)
	}
	if o.Effective {
		yesNo(ex.Effective)
	}
	if o.Obstruction {
		if ex.NoObstruction {
			cell("YES")
		} else {
			cell("NO(%d)", ex.CompleteFibers(s.g))
		}
	}

	res := s.result(ex)
	if o.Chern || o.PK {
		if res == nil || !res.Invariants.Defined() {
			if o.Chern {
				cell("--")
			}
			if o.PK {
				cell("--")
			}
		} else {
			inv := res.Invariants
			if o.Chern {
				switch {
				case !o.Fraction:
					cell("$(%d,%d)$", inv.C1Sq, inv.C2)
				case inv.C2 == 0:
					cell("$\\infty$")
				default:
					r, _ := inv.Rounded(o.Precision)
					cell("$%s$", r)
				}
			}
			if o.PK {
				cell("$(%d,%d)$", inv.P, inv.K)
			}
		}
	}
	if o.Determinant {
		if res == nil {
			cell("--")
		} else {
			cell("%d", res.Determinant)
		}
	}
	if two {
		cell("%s", wormhole(ex.Wormhole))
	}

	b.WriteString(strconv.Itoa(ex.Index))
	if ex.NefWarning {
		b.WriteString(" ${}^\\dagger$")
	}
	if o.Base {
		b.WriteString(" & " + EncodeBase62(BaseMask(s.g, ex)))
	}
	return b.String()
}

// orderedPair returns the singularities of a chain example, the larger
// first when there are two.
func (s *summary) orderedPair(ex *record.Example) []record.Singularity {
	sing := ex.Singularities()
	if len(sing) != 2 {
		return sing
	}
	key := func(x record.Singularity) [3]int64 {
		if s.opts.LengthSort {
			return [3]int64{int64(x.Length), x.N, x.A}
		}
		return [3]int64{x.N, x.A, int64(x.Length)}
	}
	if slices.Compare(key(sing[1])[:], key(sing[0])[:]) > 0 {
		sing[0], sing[1] = sing[1], sing[0]
	}
	return sing
}

func (s *summary) result(ex *record.Example) *analysis.Result {
	i := ex.Index - 1
	if i < 0 || i >= len(s.results) || s.results[i].Err != nil {
		return nil
	}
	return s.results[i].Result
}

func wormhole(wh record.Wormhole) string {
	switch {
	case wh.Kind == 0:
		return "--"
	case wh.Kind == 1:
		return "NO"
	case wh.Counterexample:
		return "CE ${}^\\dagger$"
	case wh.HasID:
		return strconv.Itoa(wh.ID + 1)
	default:
		return "YES"
	}
}

func denominators(ex *record.Example) []int64 {
	var ns []int64
	if ex.QHD != nil {
		ns = append(ns, ex.QHD.N)
	}
	for _, c := range ex.Chains {
		ns = append(ns, c.N)
	}
	return ns
}

func gcd(ns ...int64) int64 {
	var g int64
	for _, n := range ns {
		a, b := g, n
		for b != 0 {
			a, b = b, a%b
		}
		g = a
	}
	return max(g, -g)
}

// BaseMask encodes which base curves an example uses: one bit per base curve
// in index order, the first base curve being the most significant.
func BaseMask(g *divisor.Graph, ex *record.Example) *big.Int {
	mask := new(big.Int)
	for _, c := range g.Base() {
		mask.Lsh(mask, 1)
		if slices.Contains(ex.Used, c) {
			mask.SetBit(mask, 0, 1)
		}
	}
	return mask
}

const base62Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// EncodeBase62 writes a non-negative mask in base 62 with digits 0-9, A-Z
// then a-z.
func EncodeBase62(mask *big.Int) string {
	if mask.Sign() == 0 {
		return "0"
	}
	var out []byte
	n := new(big.Int).Set(mask)
	base := big.NewInt(62)
	d := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, d)
		out = append(out, base62Digits[d.Int64()])
	}
	slices.Reverse(out)
	return string(out)
}
