package divisor_test

import (
	"fmt"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
)

func ExampleGraph_Degree() {
	// Two base curves meeting once, blown up at their intersection point.
	g := &divisor.Graph{
		Adjacency:   [][]int{{2}, {2}, {0, 1}},
		SelfInt:     []int64{-2, -2, -1},
		Exceptional: []int{2},
	}
	fmt.Println("valid:", g.Validate() == nil)
	fmt.Println("degree of E:", g.Degree(2))
	fmt.Println("base:", g.Base())
	// Output:
	// valid: true
	// degree of E: 2
	// base: [0 1]
}

func ExampleSelection_Validate() {
	g := &divisor.Graph{
		Adjacency:   [][]int{{1}, {0}},
		SelfInt:     []int64{-3, -1},
		Exceptional: []int{1},
	}
	sel := divisor.Selection{Used: []int{0}, BlowdownOrder: []int{0}}
	fmt.Println(sel.Validate(g))
	// Output:
	// blowdown order: curve 0: curve is not exceptional
}
