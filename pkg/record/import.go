package record

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
)

type graphLine struct {
	ID               map[string]int `json:"id,omitempty"`
	Name             []string       `json:"name"`
	Fibers           [][]int        `json:"Fibers"`
	FiberType        []string       `json:"FiberType"`
	Graph            [][]int        `json:"graph"`
	SelfInt          []int64        `json:"selfint"`
	K2               int64          `json:"K2"`
	Exceptional      []int          `json:"blps"`
	NefCheck         bool           `json:"nef_check"`
	EffectiveCheck   bool           `json:"effective_check"`
	ObstructionCheck bool           `json:"obstruction_check"`
}

type exampleLine struct {
	Count int    `json:"#"`
	WH    *int   `json:"WH,omitempty"`
	WHid  *int   `json:"WHid,omitempty"`
	WHCE  *bool  `json:"WH_CE,omitempty"`
	K2    int64  `json:"K2"`
	N     *int64 `json:"N,omitempty"`
	N0    *int64 `json:"N0,omitempty"`
	N1    *int64 `json:"N1,omitempty"`

	Used []int    `json:"used"`
	Blds []int    `json:"blds"`
	Blps [][2]int `json:"blps"`

	En  *int `json:"en,omitempty"`
	Ea  *int `json:"ea,omitempty"`
	Eb  *int `json:"eb,omitempty"`
	En0 *int `json:"en0,omitempty"`
	Ea0 *int `json:"ea0,omitempty"`
	Eb0 *int `json:"eb0,omitempty"`
	En1 *int `json:"en1,omitempty"`
	Ea1 *int `json:"ea1,omitempty"`
	Eb1 *int `json:"eb1,omitempty"`

	ChainOrig   []int   `json:"chain_orig,omitempty"`
	SelfIntOrig []int64 `json:"selfint_orig,omitempty"`
	Chain       []int   `json:"chain,omitempty"`
	Chain0      []int   `json:"chain0,omitempty"`
	Chain1      []int   `json:"chain1,omitempty"`
	Fork        []int   `json:"fork,omitempty"`

	Type *string `json:"type,omitempty"`
	P    *int64  `json:"p,omitempty"`
	Q    *int64  `json:"q,omitempty"`
	R    *int64  `json:"r,omitempty"`
	Perm []int   `json:"perm,omitempty"`

	SelfInt []int64 `json:"selfint"`
	Disc    []int64 `json:"disc"`
	Delta   *int64  `json:"Delta,omitempty"`
	Omega   *int64  `json:"Omega,omitempty"`

	Nef     *bool `json:"nef,omitempty"`
	NefWarn *bool `json:"nef_warn,omitempty"`
	Obs     *bool `json:"obs,omitempty"`
	Qef     *bool `json:"Qef,omitempty"`
}

// ReadJSONL decodes a complete JSONL file from r.
//
// The first line must be the graph record and every following non-empty
// line an example record. Example indices are 1-based in file order.
//
// ReadJSONL validates the graph with [divisor.Graph.Validate] and the
// selection of every example with [divisor.Selection.Validate]. Errors name
// the offending line. ReadJSONL does not close r.
func ReadJSONL(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	first, err := readLine(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, err
	}
	g, err := DecodeGraph(first)
	if err != nil {
		return nil, err
	}

	f := &File{Graph: g}
	for idx := 1; ; idx++ {
		line, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ex, err := DecodeExample(g, line, idx)
		if err != nil {
			return nil, err
		}
		f.Examples = append(f.Examples, ex)
	}
	return f, nil
}

// ImportJSONL reads the JSONL file at path using [ReadJSONL].
func ImportJSONL(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSONL(f)
}

// ReadExample reads the graph and the example at index (1-based) from the
// JSONL file at path without decoding the other examples.
func ReadExample(path string, index int) (*divisor.Graph, *Example, error) {
	if index < 1 {
		return nil, nil, fmt.Errorf("index %d: %w", index, ErrExampleNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := readLine(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyFile
		}
		return nil, nil, err
	}
	g, err := DecodeGraph(first)
	if err != nil {
		return nil, nil, err
	}
	for i := 1; ; i++ {
		line, err := readLine(br)
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("index %d (file has %d examples): %w", index, i-1, ErrExampleNotFound)
		}
		if err != nil {
			return nil, nil, err
		}
		if i == index {
			ex, err := DecodeExample(g, line, index)
			if err != nil {
				return nil, nil, err
			}
			return g, ex, nil
		}
	}
}

// readLine returns the next non-blank line, or io.EOF.
func readLine(br *bufio.Reader) ([]byte, error) {
	for {
		line, err := br.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			return line, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read: %w", err)
		}
	}
}

// DecodeGraph decodes and validates a graph record.
func DecodeGraph(data []byte) (*divisor.Graph, error) {
	var gl graphLine
	if err := json.Unmarshal(data, &gl); err != nil {
		return nil, fmt.Errorf("graph: decode: %w", err)
	}
	g := &divisor.Graph{
		Adjacency:   gl.Graph,
		SelfInt:     gl.SelfInt,
		Exceptional: gl.Exceptional,
		K2:          gl.K2,
		Meta: divisor.Metadata{
			Names:            gl.Name,
			IDs:              gl.ID,
			Fibers:           gl.Fibers,
			FiberTypes:       gl.FiberType,
			NefCheck:         gl.NefCheck,
			EffectiveCheck:   gl.EffectiveCheck,
			ObstructionCheck: gl.ObstructionCheck,
		},
	}
	for i, nb := range g.Adjacency {
		if nb == nil {
			g.Adjacency[i] = []int{}
		}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	return g, nil
}

// DecodeExample decodes the example record at 1-based index and validates
// it against g.
func DecodeExample(g *divisor.Graph, data []byte, index int) (*Example, error) {
	var el exampleLine
	if err := json.Unmarshal(data, &el); err != nil {
		return nil, fmt.Errorf("example %d: decode: %w", index, err)
	}
	ex, err := el.toExample(index)
	if err != nil {
		return nil, fmt.Errorf("example %d: %w", index, err)
	}
	if err := ex.Selection().Validate(g); err != nil {
		return nil, fmt.Errorf("example %d: %w", index, err)
	}
	if err := ex.checkLocal(); err != nil {
		return nil, fmt.Errorf("example %d: %w", index, err)
	}
	return ex, nil
}

func shapeOf(el *exampleLine) (Shape, error) {
	switch el.Count {
	case 1:
		if el.Type != nil {
			return ShapeSingleQHD, nil
		}
		return ShapeSingleChain, nil
	case 2:
		if el.WH == nil {
			return 0, fmt.Errorf("%w: WH", ErrMissingField)
		}
		if *el.WH != 0 {
			return ShapePExtremal, nil
		}
		if el.Type != nil {
			return ShapeDoubleQHD, nil
		}
		return ShapeDoubleChain, nil
	}
	return 0, fmt.Errorf("%w: # = %d", ErrUnknownShape, el.Count)
}

func (el *exampleLine) toExample(index int) (*Example, error) {
	shape, err := shapeOf(el)
	if err != nil {
		return nil, err
	}
	ex := &Example{
		Index:         index,
		Shape:         shape,
		K2:            el.K2,
		Used:          el.Used,
		Blowdowns:     el.Blds,
		Connections:   el.Blps,
		SelfInt:       el.SelfInt,
		Discrepancies: el.Disc,
		RawFork:       el.Fork,
		Nef:           deref(el.Nef),
		NefWarning:    deref(el.NefWarn),
		NoObstruction: deref(el.Obs),
		Effective:     deref(el.Qef),
	}
	if el.WH != nil {
		ex.Wormhole = Wormhole{Kind: *el.WH, ID: deref(el.WHid), HasID: el.WHid != nil, Counterexample: deref(el.WHCE)}
	}

	need := func(name string, v *int64) (int64, error) {
		if v == nil {
			return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		return *v, nil
	}
	var n, n0, n1 int64
	switch shape {
	case ShapeSingleChain, ShapeSingleQHD:
		if n, err = need("N", el.N); err != nil {
			return nil, err
		}
		ex.Extra[0] = extra(el.En, el.Ea, el.Eb)
	default:
		if n0, err = need("N0", el.N0); err != nil {
			return nil, err
		}
		if n1, err = need("N1", el.N1); err != nil {
			return nil, err
		}
		ex.Extra[0] = extra(el.En0, el.Ea0, el.Eb0)
		ex.Extra[1] = extra(el.En1, el.Ea1, el.Eb1)
	}

	switch shape {
	case ShapeSingleChain:
		ex.Chains = []Chain{{Curves: el.Chain, N: n}}
	case ShapeDoubleChain:
		ex.Chains = []Chain{{Curves: el.Chain0, N: n0}, {Curves: el.Chain1, N: n1}}
	case ShapePExtremal:
		ex.Chains = []Chain{{Curves: el.Chain0, N: n0}, {Curves: el.Chain1, N: n1}}
		ex.Original = &Chain{Curves: el.ChainOrig}
		ex.OriginalSelfInt = el.SelfIntOrig
		ex.Delta = deref(el.Delta)
		ex.Omega = deref(el.Omega)
	case ShapeSingleQHD:
		ex.QHD = el.qhd(n)
	case ShapeDoubleQHD:
		ex.QHD = el.qhd(n0)
		ex.Chains = []Chain{{Curves: el.Chain, N: n1}}
	}
	if shape.HasFork() && len(el.Fork) == 0 {
		return nil, fmt.Errorf("%w: fork", ErrMissingField)
	}
	for i, c := range ex.Chains {
		if len(c.Curves) == 0 {
			return nil, fmt.Errorf("%w: chain %d", ErrMissingField, i)
		}
	}
	return ex, nil
}

func (el *exampleLine) qhd(n int64) *QHD {
	return &QHD{
		Type: deref(el.Type),
		P:    deref(el.P),
		Q:    deref(el.Q),
		R:    deref(el.R),
		N:    n,
		Perm: el.Perm,
	}
}

// checkLocal verifies that every local curve index referenced by chains and
// forks has a self-intersection and a discrepancy.
func (e *Example) checkLocal() error {
	local := min(len(e.SelfInt), len(e.Discrepancies))
	check := func(what string, curves []int) error {
		for _, c := range curves {
			if c < 0 || c >= local {
				return fmt.Errorf("%s: local curve %d (have %d): %w", what, c, local, divisor.ErrCurveOutOfRange)
			}
		}
		return nil
	}
	for i, c := range e.Chains {
		if err := check(fmt.Sprintf("chain %d", i), c.Curves); err != nil {
			return err
		}
	}
	if err := check("fork", e.RawFork); err != nil {
		return err
	}
	if e.Original != nil {
		for _, c := range e.Original.Curves {
			if c < 0 || c >= len(e.OriginalSelfInt) {
				return fmt.Errorf("original chain: local curve %d: %w", c, divisor.ErrCurveOutOfRange)
			}
		}
	}
	for _, x := range e.ExtraBlowups() {
		if x.A < 0 || x.A >= len(e.Used) || x.B < 0 || x.B >= len(e.Used) {
			return fmt.Errorf("extra blowup at %d-%d: %w", x.A, x.B, divisor.ErrCurveOutOfRange)
		}
	}
	for _, p := range e.Connections {
		if p[0] < 0 || p[0] >= len(e.Used) || p[1] < 0 || p[1] >= len(e.Used) {
			return fmt.Errorf("blowup %d-%d: %w", p[0], p[1], divisor.ErrCurveOutOfRange)
		}
	}
	return nil
}

func extra(n, a, b *int) ExtraBlowup {
	return ExtraBlowup{Count: deref(n), A: deref(a), B: deref(b)}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
