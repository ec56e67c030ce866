package resolve

import (
	"fmt"
	"sort"
	"strings"
)

// ImpactReport is a BFS-layered view of everything that would be affected
// by a change to Root: level 1 is every file that directly depends on
// Root, level 2 is everything that depends on level 1, and so on.
type ImpactReport struct {
	Root   string
	Levels [][]string
}

// String renders the report the way formatImpactReport did.
func (r ImpactReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", r.Root)
	for i, level := range r.Levels {
		fmt.Fprintf(&b, "    level %d (%d): %s\n", i+1, len(level), strings.Join(level, ", "))
	}
	return b.String()
}

// dependentsGraph maps a file to the set of files whose selection directly
// required it.
type dependentsGraph map[string]map[string]bool

func (res *Result) dependents() dependentsGraph {
	graph := make(dependentsGraph)
	for _, e := range res.Edges {
		if e.From == e.To {
			continue
		}
		if graph[e.To] == nil {
			graph[e.To] = make(map[string]bool)
		}
		graph[e.To][e.From] = true
	}
	return graph
}

// ImpactOf computes the dependents-reachability report for root, adapted
// from internal/indexer/deps.go's computeImpact — same BFS-by-level shape,
// generalized from "lint symbol" to "resolved file".
func (res *Result) ImpactOf(root string) ImpactReport {
	graph := res.dependents()
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var levels [][]string

	for len(frontier) > 0 {
		var next []string
		for _, f := range frontier {
			for dep := range graph[f] {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				next = append(next, dep)
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Strings(next)
		levels = append(levels, next)
		frontier = next
	}

	return ImpactReport{Root: root, Levels: levels}
}
