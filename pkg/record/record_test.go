package record

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
)

const testGraph = `{"id":{"A":0,"B":2,"E":1},"name":["A","E","B"],"Fibers":[[0,2]],"FiberType":["I2"],"graph":[[1],[0,2],[1]],"selfint":[-2,-1,-2],"K2":3,"blps":[1],"INT_MAX":2147483647,"nef_check":true,"effective_check":false,"obstruction_check":true}`

var testExamples = []string{
	`{"#":1,"K2":4,"N":4,"used":[0,2],"blds":[1],"blps":[],"en":0,"ea":0,"eb":0,"chain":[0,1],"selfint":[-1,-1],"disc":[-1,-3],"nef":true,"nef_warn":false,"obs":true}`,
	`{"#":2,"WH":0,"K2":4,"N0":4,"N1":9,"used":[0,1,2],"blds":[],"blps":[[0,1]],"en0":1,"ea0":0,"eb0":2,"en1":0,"ea1":0,"eb1":0,"chain0":[0],"chain1":[2,3],"selfint":[-4,-1,-2,-5],"disc":[-2,0,-4,-5],"nef":false,"nef_warn":true,"obs":false}`,
	`{"#":1,"K2":4,"N":9,"used":[0,2],"blds":[1],"blps":[],"en":0,"ea":0,"eb":0,"fork":[1,2,1,0,1,3],"type":"a","p":2,"q":3,"r":4,"perm":[0,1,2],"selfint":[-4,-2,-2,-3],"disc":[-1,-1,-2,-2],"nef":true,"nef_warn":false,"obs":true}`,
	`{"#":2,"WH":2,"WHid":0,"K2":4,"N0":4,"N1":4,"used":[0,2],"blds":[1],"blps":[],"en0":0,"ea0":0,"eb0":0,"en1":1,"ea1":0,"eb1":1,"chain_orig":[0,1],"selfint_orig":[-2,-2],"chain0":[0],"chain1":[1],"selfint":[-4,-4],"disc":[-1,-1],"Delta":3,"Omega":1,"WH_CE":false,"nef":true,"nef_warn":false,"obs":true}`,
	`{"#":2,"WH":0,"K2":5,"N0":9,"N1":4,"used":[0,2],"blds":[],"blps":[],"en0":0,"ea0":0,"eb0":0,"en1":0,"ea1":0,"eb1":0,"fork":[0,2,0,1,0,3],"type":"b","p":2,"q":2,"r":5,"perm":[1,0,2],"chain":[1,2],"selfint":[-2,-3,-4,-2],"disc":[-1,-2,-3,-1],"nef":true,"nef_warn":false,"obs":false}`,
}

func testFile() string {
	return testGraph + "\n" + strings.Join(testExamples, "\n") + "\n"
}

func TestReadJSONLGraph(t *testing.T) {
	f, err := ReadJSONL(strings.NewReader(testFile()))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	g := f.Graph
	if g.Len() != 3 || g.K2 != 3 {
		t.Fatalf("graph: len %d K2 %d", g.Len(), g.K2)
	}
	if g.Name(1) != "E" || g.Meta.IDs["B"] != 2 {
		t.Errorf("names not decoded: %v %v", g.Meta.Names, g.Meta.IDs)
	}
	if !g.Meta.NefCheck || g.Meta.EffectiveCheck || !g.Meta.ObstructionCheck {
		t.Errorf("check flags: %+v", g.Meta)
	}
	if len(f.Examples) != len(testExamples) {
		t.Fatalf("got %d examples, want %d", len(f.Examples), len(testExamples))
	}
}

func TestReadJSONLShapes(t *testing.T) {
	f, err := ReadJSONL(strings.NewReader(testFile()))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	want := []Shape{ShapeSingleChain, ShapeDoubleChain, ShapeSingleQHD, ShapePExtremal, ShapeDoubleQHD}
	for i, ex := range f.Examples {
		if ex.Index != i+1 {
			t.Errorf("example %d: index %d", i+1, ex.Index)
		}
		if ex.Shape != want[i] {
			t.Errorf("example %d: shape %v, want %v", i+1, ex.Shape, want[i])
		}
	}
}

func TestExampleSelection(t *testing.T) {
	ex := &Example{Used: []int{4, 0, 2}, Blowdowns: []int{5, 7, 9}}
	sel := ex.Selection()
	if !slices.Equal(sel.BlowdownOrder, []int{9, 7, 5}) {
		t.Errorf("BlowdownOrder = %v, want [9 7 5]", sel.BlowdownOrder)
	}
	if !slices.Equal(ex.Blowdowns, []int{5, 7, 9}) {
		t.Error("Selection modified the example")
	}
	sel.Used[0] = 1
	if ex.Used[0] != 4 {
		t.Error("Selection shares Used with the example")
	}
}

func TestExampleSingularities(t *testing.T) {
	f, err := ReadJSONL(strings.NewReader(testFile()))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	tests := []struct {
		index int
		want  []Singularity
	}{
		{1, []Singularity{{N: 4, A: 1, Length: 2}}},
		{2, []Singularity{{N: 4, A: 2, Length: 1}, {N: 9, A: 4, Length: 2}}},
		{3, []Singularity{}},
		{5, []Singularity{{N: 4, A: 2, Length: 2}}},
	}
	for _, tt := range tests {
		got := f.Examples[tt.index-1].Singularities()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("example %d: Singularities() = %+v, want %+v", tt.index, got, tt.want)
		}
	}
}

func TestExampleFork(t *testing.T) {
	f, err := ReadJSONL(strings.NewReader(testFile()))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	ex := f.Examples[2]
	fork, err := ex.Fork()
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	want := [3][]int{{2}, {1, 0}, {3}}
	if !reflect.DeepEqual(fork, want) {
		t.Errorf("Fork() = %v, want %v", fork, want)
	}
	if ex.ForkLength() != 4 {
		t.Errorf("ForkLength() = %d, want 4", ex.ForkLength())
	}
	if ex.QHD == nil || ex.QHD.Type != "a" || ex.QHD.N != 9 || ex.QHD.R != 4 {
		t.Errorf("QHD = %+v", ex.QHD)
	}

	bad := &Example{RawFork: []int{1, 2, 1, 3}}
	if _, err := bad.Fork(); !errors.Is(err, ErrMalformedFork) {
		t.Errorf("Fork() on two branches = %v, want ErrMalformedFork", err)
	}
}

func TestExampleLabelsAndExtras(t *testing.T) {
	f, err := ReadJSONL(strings.NewReader(testFile()))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	ex := f.Examples[1]
	if got := ex.Label(f.Graph, 1); got != "E" {
		t.Errorf("Label(1) = %q", got)
	}
	if got := ex.Label(f.Graph, 3); got != "*A_1" {
		t.Errorf("Label(3) = %q, want *A_1", got)
	}
	extras := ex.ExtraBlowups()
	if len(extras) != 1 || extras[0] != (ExtraBlowup{Count: 1, A: 0, B: 2}) {
		t.Errorf("ExtraBlowups() = %+v", extras)
	}
	if got := f.Examples[3].ExtraBlowups(); len(got) != 1 || got[0].Count != 1 {
		t.Errorf("P-extremal ExtraBlowups() = %+v", got)
	}
	if ex.CompleteFibers(f.Graph) != 1 {
		t.Errorf("CompleteFibers = %d, want 1", ex.CompleteFibers(f.Graph))
	}
	if !ex.NefWarning || ex.Nef {
		t.Errorf("nef flags: nef=%v warn=%v", ex.Nef, ex.NefWarning)
	}
}

func TestReadJSONLErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "\n\n", ErrEmptyFile},
		{"unknown shape", testGraph + "\n" + `{"#":3,"K2":1,"used":[],"blds":[],"selfint":[],"disc":[]}`, ErrUnknownShape},
		{"missing WH", testGraph + "\n" + `{"#":2,"K2":1,"N0":1,"N1":1,"used":[],"blds":[],"chain0":[0],"chain1":[0],"selfint":[0],"disc":[0]}`, ErrMissingField},
		{"missing N", testGraph + "\n" + `{"#":1,"K2":1,"used":[0],"blds":[],"chain":[0],"selfint":[0],"disc":[0]}`, ErrMissingField},
		{"missing chain", testGraph + "\n" + `{"#":1,"K2":1,"N":2,"used":[0],"blds":[],"selfint":[0],"disc":[0]}`, ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSONL(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadJSONL() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadJSONLRejectsBadReferences(t *testing.T) {
	inputs := []string{
		`{"#":1,"K2":1,"N":2,"used":[0,7],"blds":[],"chain":[0],"selfint":[0],"disc":[0]}`,
		`{"#":1,"K2":1,"N":2,"used":[0],"blds":[0],"chain":[0],"selfint":[0],"disc":[0]}`,
		`{"#":1,"K2":1,"N":2,"used":[0],"blds":[],"chain":[0,1],"selfint":[0],"disc":[0]}`,
	}
	for i, in := range inputs {
		if _, err := ReadJSONL(strings.NewReader(testGraph + "\n" + in)); err == nil {
			t.Errorf("input %d: expected an error", i)
		} else if !strings.Contains(err.Error(), "example 1") {
			t.Errorf("input %d: error %q does not name the example", i, err)
		}
	}
}

func TestWriteJSONLRoundTrip(t *testing.T) {
	f, err := ReadJSONL(strings.NewReader(testFile()))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteJSONL(f, &buf); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != len(testExamples)+1 {
		t.Fatalf("wrote %d lines, want %d", n, len(testExamples)+1)
	}
	again, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if !reflect.DeepEqual(f, again) {
		t.Errorf("round trip changed the file")
	}
}

func TestReadExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.jsonl")
	if err := os.WriteFile(path, []byte(testFile()), 0o644); err != nil {
		t.Fatal(err)
	}

	g, ex, err := ReadExample(path, 4)
	if err != nil {
		t.Fatalf("ReadExample: %v", err)
	}
	if g.Len() != 3 || ex.Shape != ShapePExtremal || ex.Delta != 3 || ex.Wormhole.Kind != 2 {
		t.Errorf("unexpected example: %+v", ex)
	}

	for _, idx := range []int{0, 6} {
		if _, _, err := ReadExample(path, idx); !errors.Is(err, ErrExampleNotFound) {
			t.Errorf("ReadExample(%d) = %v, want ErrExampleNotFound", idx, err)
		}
	}
}
