package analysis

import (
	"cmp"

	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

// CensusOptions bounds the K² of the examples counted by [TakeCensus].
type CensusOptions struct {
	MinK2, MaxK2 int64
}

// DefaultCensusOptions counts K² from 1 to 4.
var DefaultCensusOptions = CensusOptions{MinK2: 1, MaxK2: 4}

// CensusBucket holds the counts for one K².
type CensusBucket struct {
	K2             int64 `json:"k2"`
	Surfaces       int   `json:"surfaces"`
	Singularities  int   `json:"singularities"`
	Configurations int   `json:"configurations"`
}

// Census counts the chain examples that pass every check, and the distinct
// singularities and configurations among them, per K².
type Census struct {
	Surfaces int            `json:"surfaces"`
	Buckets  []CensusBucket `json:"buckets"`
}

type configKey struct {
	first, second record.Singularity
	pair          bool
}

type censusSets struct {
	surfaces       int
	singularities  map[[2]int64]struct{}
	configurations map[configKey]struct{}
}

// TakeCensus counts the examples of files that are nef without warning,
// unobstructed and Q-effective, have no QHD fork and lie in the K² range.
//
// Every (n, a) of a counted example is a singularity and a configuration
// by itself. A two-chain example also adds its pair, larger first. A pair
// of equal singularities with wormhole data still counts as a surface but
// adds nothing else.
func TakeCensus(files []*record.File, opts CensusOptions) *Census {
	buckets := make(map[int64]*censusSets)
	total := 0
	for _, f := range files {
		for _, ex := range f.Examples {
			if !ex.Nef || ex.NefWarning || !ex.NoObstruction || !ex.Effective {
				continue
			}
			if ex.Shape.HasFork() || ex.K2 < opts.MinK2 || ex.K2 > opts.MaxK2 {
				continue
			}
			s, ok := buckets[ex.K2]
			if !ok {
				s = &censusSets{
					singularities:  make(map[[2]int64]struct{}),
					configurations: make(map[configKey]struct{}),
				}
				buckets[ex.K2] = s
			}
			total++
			s.surfaces++
			s.add(ex)
		}
	}

	c := &Census{Surfaces: total}
	for k2 := opts.MinK2; k2 <= opts.MaxK2; k2++ {
		b := CensusBucket{K2: k2}
		if s, ok := buckets[k2]; ok {
			b.Surfaces = s.surfaces
			b.Singularities = len(s.singularities)
			b.Configurations = len(s.configurations)
		}
		c.Buckets = append(c.Buckets, b)
	}
	return c
}

func (s *censusSets) add(ex *record.Example) {
	sing := ex.Singularities()
	for i := range sing {
		sing[i].Length = 0
	}
	if len(sing) == 2 {
		a, b := sing[0], sing[1]
		switch compareSingularity(a, b) {
		case 0:
			if ex.Wormhole.Kind != 0 {
				return
			}
		case 1:
			a, b = b, a
		}
		s.configurations[configKey{first: b, second: a, pair: true}] = struct{}{}
	}
	for _, x := range sing {
		s.singularities[[2]int64{x.N, x.A}] = struct{}{}
		s.configurations[configKey{first: x}] = struct{}{}
	}
}

func compareSingularity(a, b record.Singularity) int {
	return cmp.Or(cmp.Compare(a.N, b.N), cmp.Compare(a.A, b.A))
}
