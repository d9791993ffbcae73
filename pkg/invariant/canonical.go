package invariant

import (
	"slices"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
)

// MaxPointDegree is the largest surviving-curve degree counted by
// [Record.PointCounts].
const MaxPointDegree = 5

// DownstairsCanonical returns, for every base curve c of g, the intersection
// K·c of the canonical class with the image of c after every exceptional
// curve of g is contracted. Entries of exceptional curves are zero.
//
// On g itself K·c = -c² - 2. Exceptional curves are then undone from the
// most recent blow-up backwards: each lowers K·c by its multiplicity with c
// and hands that multiplicity to the one or two exceptional curves it meets,
// which also come to meet each other when there are two.
func DownstairsCanonical(g *divisor.Graph) []int64 {
	out := make([]int64, g.Len())
	order := slices.Clone(g.Exceptional)
	slices.Reverse(order)

	for _, c := range g.Base() {
		adj := make([][]int, g.Len())
		for _, e := range g.Exceptional {
			adj[e] = slices.Clone(g.Adjacency[e])
		}

		k := -g.SelfInt[c] - 2
		for _, e := range order {
			mult := 0
			var parents []int
			for _, x := range adj[e] {
				switch {
				case x == c:
					mult++
				case g.IsExceptional(x):
					parents = append(parents, x)
				}
			}
			k -= int64(mult)

			switch len(parents) {
			case 1:
				p := parents[0]
				adj[p] = dropOne(adj[p], e)
				adj[p] = append(adj[p], slices.Repeat([]int{c}, mult)...)
			case 2:
				p, q := parents[0], parents[1]
				adj[p] = dropOne(adj[p], e)
				adj[q] = dropOne(adj[q], e)
				adj[p] = append(adj[p], slices.Repeat([]int{c}, mult)...)
				adj[q] = append(adj[q], slices.Repeat([]int{c}, mult)...)
				adj[p] = append(adj[p], q)
				adj[q] = append(adj[q], p)
			}
			adj[e] = nil
		}
		out[c] = k
	}
	return out
}

// PointCounts returns t_2 … t_5 of a defined record. For m ≥ 3, t_m is the
// number of surviving exceptional curves of degree m. t_2 is the number of
// double points left once each surviving curve of degree m ≥ 3 has taken its
// m points and each surviving curve of degree 2 has merged its two into one.
//
// ok is false when the record is undefined or a surviving curve has degree
// above [MaxPointDegree].
func (r Record) PointCounts() (t [4]int64, ok bool) {
	if !r.Defined() {
		return t, false
	}
	t[0] = r.DoublePoints2 / 2
	for m, count := range r.Histogram {
		n := int64(count)
		switch {
		case m > MaxPointDegree:
			return [4]int64{}, false
		case m == 2:
			t[0] -= n
		case m > 2:
			t[m-2] = n
			t[0] -= n * int64(m)
		default:
			t[0] -= n * int64(m)
		}
	}
	return t, true
}

func dropOne(s []int, v int) []int {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}
