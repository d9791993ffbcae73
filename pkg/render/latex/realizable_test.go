package latex

import (
	"errors"
	"strings"
	"testing"

	"github.com/jereyes4/Wahl-Chains/pkg/invariant"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

func TestNewRealizableRow(t *testing.T) {
	ex := &record.Example{Index: 7, Shape: record.ShapeDoubleChain}
	defined := invariant.Record{NormalCrossing: true, Used: []int{0, 1}, DoublePoints2: 2, C1Sq: -4, C2: 9}
	surviving := invariant.Record{
		NormalCrossing: true,
		Used:           []int{0, 1, 2},
		Surviving:      []int{2},
		DoublePoints2:  6,
		Histogram:      map[int]int{2: 1},
	}

	tests := []struct {
		name      string
		inv       invariant.Record
		canonical []int64
		ok        bool
		canon     [5]int64
		points    [4]int64
	}{
		{"contracted", defined, []int64{-1, -1, 0}, true, [5]int64{0, 2, 0, 0, 0}, [4]int64{1, 0, 0, 0}},
		{"mixed types", defined, []int64{-4, 0, 0}, true, [5]int64{1, 0, 0, 0, 1}, [4]int64{1, 0, 0, 0}},
		{"surviving curve skipped", surviving, []int64{-1, -2, 5}, true, [5]int64{0, 1, 1, 0, 0}, [4]int64{2, 0, 0, 0}},
		{"type above two", defined, []int64{-5, -1, 0}, false, [5]int64{}, [4]int64{}},
		{"not normal crossing", invariant.Record{}, []int64{-1, -1, 0}, false, [5]int64{}, [4]int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok, err := NewRealizableRow("f.jsonl", ex, tt.inv, tt.canonical)
			if err != nil {
				t.Fatalf("NewRealizableRow: %v", err)
			}
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if row.Canonical != tt.canon {
				t.Errorf("Canonical = %v, want %v", row.Canonical, tt.canon)
			}
			if row.Points != tt.points {
				t.Errorf("Points = %v, want %v", row.Points, tt.points)
			}
			if row.Chains != 2 || row.Index != 7 || row.Source != "f.jsonl" {
				t.Errorf("row = %+v", row)
			}
		})
	}

	_, _, err := NewRealizableRow("f.jsonl", ex, defined, []int64{1, -1, 0})
	if !errors.Is(err, ErrPositiveCanonical) {
		t.Errorf("positive canonical: err = %v, want %v", err, ErrPositiveCanonical)
	}
}

func TestWriteRealizable(t *testing.T) {
	row := func(index int, c1, c2 int64) RealizableRow {
		return RealizableRow{
			Chains:    1,
			Canonical: [5]int64{0, 2, 0, 0, 0},
			Points:    [4]int64{1, 0, 0, 0},
			C1Sq:      c1,
			C2:        c2,
			Source:    "k5_run.jsonl",
			Index:     index,
		}
	}
	other := row(9, 1, 1)
	other.Chains = 2
	rows := []RealizableRow{row(3, -4, 9), row(4, 5, 0), row(1, -8, 18), row(2, 1, 9), other}

	var b strings.Builder
	if err := WriteRealizable(&b, rows, RealizableOptions{Chains: 1, K2: 5, Precision: 2}); err != nil {
		t.Fatalf("WriteRealizable: %v", err)
	}
	got := b.String()

	want := "\\hline\n\\endfoot\n\n" +
		"0 & 2 & 0 & 0 & 0 & 1 & 0 & 0 & 0 & $-0.44$ & \\texttt{k5\\_run.jsonl} -- 1\\\\\n" +
		"0 & 2 & 0 & 0 & 0 & 1 & 0 & 0 & 0 & $0.11$ & \\texttt{k5\\_run.jsonl} -- 2\\\\\n" +
		"0 & 2 & 0 & 0 & 0 & 1 & 0 & 0 & 0 & $\\infty$ & \\texttt{k5\\_run.jsonl} -- 4\n" +
		"\\end{longtable}\n"
	if !strings.HasSuffix(got, want) {
		t.Errorf("rows:\n%s\nwant suffix:\n%s", got, want)
	}
	for _, w := range []string{
		"%\\usepackage{longtable}\n\\begin{longtable}{|c|c|c|c|c||||c|c|c|c||||c||||c|}\n",
		"\\multicolumn{11}{|c|}{Realizable configurations, 1 chain, $K^2 = 5$}\\\\\n",
		"$e_{-2}$ & $e_{-1}$ & $e_{0}$ & $e_{1}$ & $e_{2}$ & $t_2$ & $t_3$ & $t_4$ & $t_5$ & $\\overline c_1^2 / \\overline c_2$ & ID\\\\\n",
	} {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
	if strings.Contains(got, "-- 3") || strings.Contains(got, "-- 9") {
		t.Errorf("duplicate or other chain count written:\n%s", got)
	}
}
