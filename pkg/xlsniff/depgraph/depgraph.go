// Package depgraph builds the named-range dependency graph and
// detects reference cycles in it.
package depgraph

import (
	"sort"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

// Graph is an arena of named-range nodes. Nodes are integer ids into
// the names slice; adjacency lists hold ids, so traversal never
// chases name-keyed pointers.
type Graph struct {
	names   []string
	ids     map[string]int
	adj     [][]int
	formula []string
}

// Build extracts name-to-name edges from named-range formulas. Edges
// only connect defined names: cell references and function keywords
// are filtered out by the formula layer, and tokens that are not
// themselves defined names are dropped here.
func Build(ranges []models.NamedRange) *Graph {
	g := &Graph{ids: make(map[string]int)}
	for _, nr := range ranges {
		g.add(nr.Name, nr.RefersTo)
	}
	for _, nr := range ranges {
		from := g.ids[nr.Name]
		for _, dep := range formula.Names(nr.RefersTo) {
			if to, ok := g.ids[dep]; ok {
				g.adj[from] = append(g.adj[from], to)
			}
		}
	}
	return g
}

func (g *Graph) add(name, refersTo string) {
	if _, ok := g.ids[name]; ok {
		return
	}
	g.ids[name] = len(g.names)
	g.names = append(g.names, name)
	g.adj = append(g.adj, nil)
	g.formula = append(g.formula, refersTo)
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.names) }

// Dependencies returns the dependency names of one node, for tests
// and diagnostics.
func (g *Graph) Dependencies(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	var out []string
	for _, to := range g.adj[id] {
		out = append(out, g.names[to])
	}
	return out
}

// Formula returns the refers-to text recorded for a name.
func (g *Graph) Formula(name string) string {
	if id, ok := g.ids[name]; ok {
		return g.formula[id]
	}
	return ""
}

// Cycles runs depth-first search with an explicit recursion stack and
// returns each cycle as its node names, closed (first name repeated
// at the end). Cycles are canonicalized by rotating to the minimum
// node id and deduplicated by node set, so a 2-cycle A→B→A is
// reported once no matter which node the search enters first.
// Self-cycles (length 1) are preserved.
func (g *Graph) Cycles() [][]string {
	var cycles [][]int
	state := make([]int, g.Len()) // 0 unvisited, 1 on stack, 2 done
	var stack []int

	var visit func(int)
	visit = func(n int) {
		state[n] = 1
		stack = append(stack, n)
		for _, next := range g.adj[n] {
			switch state[next] {
			case 0:
				visit(next)
			case 1:
				for i, v := range stack {
					if v == next {
						cycle := append([]int(nil), stack[i:]...)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = 2
	}
	for n := 0; n < g.Len(); n++ {
		if state[n] == 0 {
			visit(n)
		}
	}

	seen := make(map[string]bool)
	var out [][]string
	for _, c := range cycles {
		canon := canonical(c)
		key := setKey(canon)
		if seen[key] {
			continue
		}
		seen[key] = true
		names := make([]string, 0, len(canon)+1)
		for _, id := range canon {
			names = append(names, g.names[id])
		}
		names = append(names, g.names[canon[0]])
		out = append(out, names)
	}
	return out
}

// canonical rotates a cycle to start at its minimum node id.
func canonical(cycle []int) []int {
	minAt := 0
	for i, v := range cycle {
		if v < cycle[minAt] {
			minAt = i
		}
	}
	out := make([]int, 0, len(cycle))
	out = append(out, cycle[minAt:]...)
	out = append(out, cycle[:minAt]...)
	return out
}

// setKey keys a cycle by its node set: two rotations or reversals of
// the same membership collapse to one report.
func setKey(cycle []int) string {
	ids := append([]int(nil), cycle...)
	sort.Ints(ids)
	key := make([]byte, 0, len(ids)*3)
	for _, id := range ids {
		key = append(key, byte(id>>16), byte(id>>8), byte(id))
	}
	return string(key)
}

// CycleProbability scores a cycle: short cycles score highest, formula
// complexity and aggregation functions in any member push the score
// up, and the result is clamped to [0, 1].
func (g *Graph) CycleProbability(cycle []string) float64 {
	// The closing duplicate does not count toward length.
	length := len(cycle)
	if length > 1 && cycle[0] == cycle[length-1] {
		length--
	}

	var base float64
	switch {
	case length <= 2:
		base = 0.9
	case length == 3:
		base = 0.8
	case length == 4:
		base = 0.7
	default:
		base = 0.6
	}

	var complexity float64
	aggregated := false
	for _, name := range cycle[:length] {
		f := g.Formula(name)
		if c := formula.Complexity(f); c > complexity {
			complexity = c
		}
		if formula.HasFunction(f, formula.Aggregations) {
			aggregated = true
		}
	}
	p := base + complexity*0.15
	if aggregated {
		p += 0.05
	}
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}
