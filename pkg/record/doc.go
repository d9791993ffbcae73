// Package record reads and writes the JSONL files produced by the example
// search.
//
// # Format
//
// The first line is the graph record:
//
//	{"id":{"A":0,"E":1,"B":2},"name":["A","E","B"],"Fibers":[],"FiberType":[],
//	 "graph":[[1],[0,2],[1]],"selfint":[-2,-1,-2],"K2":3,"blps":[1],
//	 "nef_check":true,"effective_check":false,"obstruction_check":false}
//
// "graph" is the adjacency list with multiplicity and "blps" the exceptional
// curves in blow-up order. Every later line is an example record whose
// 1-based index is its line number minus one. Curve numbers inside an
// example's chains, forks and "blps" pairs are local: they index into
// "used", and values past the end of "used" are extra curves created by the
// example's own extra blow-ups.
//
// # Shapes
//
// An example is one of five shapes, decided once at decode time from the
// "#", "WH" and "type" keys (see [Shape]):
//
//	#=1, no type          single chain
//	#=1, type             single QHD
//	#=2, WH=0, no type    double chain
//	#=2, WH=0, type       QHD and chain
//	#=2, WH!=0            P-extremal resolution
//
// # Contraction Order
//
// "blds" stores the contracted exceptional curves in increasing index order.
// [Example.Selection] reverses it so the most recently created curve is
// contracted first.
package record
