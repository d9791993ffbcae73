package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
)

// WriteJSONL encodes f as JSONL: the graph record on the first line, then
// one example record per line in slice order. Optional check results are
// written only when the graph declares the corresponding check.
func WriteJSONL(f *File, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeLine(bw, encodeGraph(f.Graph)); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	for _, ex := range f.Examples {
		if err := writeLine(bw, encodeExample(f.Graph, ex)); err != nil {
			return fmt.Errorf("example %d: %w", ex.Index, err)
		}
	}
	return bw.Flush()
}

// ExportJSONL writes f to the file at path using [WriteJSONL].
func ExportJSONL(f *File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSONL(f, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeLine(w *bufio.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func encodeGraph(g *divisor.Graph) graphLine {
	return graphLine{
		ID:               g.Meta.IDs,
		Name:             g.Meta.Names,
		Fibers:           g.Meta.Fibers,
		FiberType:        g.Meta.FiberTypes,
		Graph:            g.Adjacency,
		SelfInt:          g.SelfInt,
		K2:               g.K2,
		Exceptional:      g.Exceptional,
		NefCheck:         g.Meta.NefCheck,
		EffectiveCheck:   g.Meta.EffectiveCheck,
		ObstructionCheck: g.Meta.ObstructionCheck,
	}
}

func encodeExample(g *divisor.Graph, ex *Example) exampleLine {
	el := exampleLine{
		Count:   ex.Shape.ChainCount(),
		K2:      ex.K2,
		Used:    ex.Used,
		Blds:    ex.Blowdowns,
		Blps:    ex.Connections,
		SelfInt: ex.SelfInt,
		Disc:    ex.Discrepancies,
		Fork:    ex.RawFork,
	}
	if el.Blps == nil {
		el.Blps = [][2]int{}
	}

	if ex.Shape.ChainCount() == 1 {
		el.N = ptr(chainN(ex))
		el.En, el.Ea, el.Eb = ptr(ex.Extra[0].Count), ptr(ex.Extra[0].A), ptr(ex.Extra[0].B)
	} else {
		el.WH = ptr(ex.Wormhole.Kind)
		el.En0, el.Ea0, el.Eb0 = ptr(ex.Extra[0].Count), ptr(ex.Extra[0].A), ptr(ex.Extra[0].B)
		el.En1, el.Ea1, el.Eb1 = ptr(ex.Extra[1].Count), ptr(ex.Extra[1].A), ptr(ex.Extra[1].B)
	}

	switch ex.Shape {
	case ShapeSingleChain:
		el.Chain = ex.Chains[0].Curves
	case ShapeDoubleChain:
		el.N0, el.N1 = ptr(ex.Chains[0].N), ptr(ex.Chains[1].N)
		el.Chain0, el.Chain1 = ex.Chains[0].Curves, ex.Chains[1].Curves
	case ShapePExtremal:
		el.N0, el.N1 = ptr(ex.Chains[0].N), ptr(ex.Chains[1].N)
		el.Chain0, el.Chain1 = ex.Chains[0].Curves, ex.Chains[1].Curves
		if ex.Wormhole.HasID {
			el.WHid = ptr(ex.Wormhole.ID)
		}
		el.WHCE = ptr(ex.Wormhole.Counterexample)
		if ex.Original != nil {
			el.ChainOrig = ex.Original.Curves
		}
		el.SelfIntOrig = ex.OriginalSelfInt
		el.Delta, el.Omega = ptr(ex.Delta), ptr(ex.Omega)
	case ShapeSingleQHD:
		el.encodeQHD(ex.QHD)
	case ShapeDoubleQHD:
		el.encodeQHD(ex.QHD)
		el.N0, el.N1 = ptr(ex.QHD.N), ptr(ex.Chains[0].N)
		el.Chain = ex.Chains[0].Curves
	}

	if g.Meta.NefCheck {
		el.Nef, el.NefWarn = ptr(ex.Nef), ptr(ex.NefWarning)
	}
	if g.Meta.ObstructionCheck {
		el.Obs = ptr(ex.NoObstruction)
	}
	if g.Meta.EffectiveCheck {
		el.Qef = ptr(ex.Effective)
	}
	return el
}

func chainN(ex *Example) int64 {
	if ex.QHD != nil {
		return ex.QHD.N
	}
	if len(ex.Chains) > 0 {
		return ex.Chains[0].N
	}
	return 0
}

func (el *exampleLine) encodeQHD(q *QHD) {
	if q == nil {
		return
	}
	el.Type = ptr(q.Type)
	el.P, el.Q, el.R = ptr(q.P), ptr(q.Q), ptr(q.R)
	el.Perm = q.Perm
}

func ptr[T any](v T) *T { return &v }
