// Package order implements the topological orderer of spec.md §4.5: a
// Kahn-style layering of the resolver's file DAG with a deterministic
// (library, path) tie-break inside each layer, plus the post-hoc
// entity-before-architecture and package-before-body checks. Grounded on
// the computeImpact BFS layering in internal/indexer/deps.go, generalized
// from "impact radius" to "a total compile order".
package order

import (
	"fmt"
	"sort"

	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/lex"
	"github.com/vhdeps/vhdeps-go/internal/resolve"
	"github.com/vhdeps/vhdeps-go/internal/unit"
)

// Row is one line of the compile order output (spec.md §6).
type Row struct {
	Role    resolve.Role
	Library string
	Version int // 0 means universal
	Path    string
}

// Linearize turns the resolver's result into a total compile order. parsed
// supplies each file's provided units, needed to verify the
// entity-before-architecture and package-before-body invariants.
func Linearize(res *resolve.Result, parsed map[string]lex.FileUnits) ([]Row, diag.List) {
	if len(res.Selections) == 0 {
		return nil, nil
	}

	indeg := make(map[string]int, len(res.Selections))
	adj := make(map[string][]string, len(res.Selections))
	for path := range res.Selections {
		indeg[path] = 0
	}
	for _, e := range res.Edges {
		if _, ok := res.Selections[e.From]; !ok {
			continue
		}
		if _, ok := res.Selections[e.To]; !ok {
			continue
		}
		// e.From depends on e.To, so To must precede From: the Kahn edge
		// runs To -> From (To's completion unblocks From).
		adj[e.To] = append(adj[e.To], e.From)
		indeg[e.From]++
	}

	type node struct {
		path    string
		library string
	}
	ready := make([]node, 0)
	for path := range res.Selections {
		if indeg[path] == 0 {
			ready = append(ready, node{path: path, library: res.Selections[path].Library})
		}
	}

	less := func(a, b node) bool {
		if a.library != b.library {
			return a.library < b.library
		}
		return a.path < b.path
	}

	var rows []Row
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		next := ready[0]
		ready = ready[1:]

		sel := res.Selections[next.path]
		rows = append(rows, Row{Role: sel.Role, Library: sel.Library, Version: sel.Version, Path: sel.Path})

		for _, succ := range adj[next.path] {
			indeg[succ]--
			if indeg[succ] == 0 {
				ready = append(ready, node{path: succ, library: res.Selections[succ].Library})
			}
		}
	}

	var diags diag.List
	if len(rows) != len(res.Selections) {
		diags = append(diags, diag.New(diag.InconsistentIndex, "", 0,
			fmt.Sprintf("topological sort could not place %d of %d selected files; a cycle escaped resolution", len(res.Selections)-len(rows), len(res.Selections))))
	}

	diags = append(diags, verifyUnitOrdering(rows, parsed)...)

	return rows, diags
}

// verifyUnitOrdering enforces I2/I3: an entity precedes its architectures
// and a package precedes its bodies, wherever both ended up selected.
func verifyUnitOrdering(rows []Row, parsed map[string]lex.FileUnits) diag.List {
	position := make(map[string]int, len(rows))
	for i, r := range rows {
		position[r.Path] = i
	}

	primaryPos := make(map[string]int) // key: library|kind|name -> row position

	for _, r := range rows {
		for _, p := range parsed[r.Path].Provided {
			if p.ID.Kind == unit.Entity || p.ID.Kind == unit.Package {
				primaryPos[p.ID.Key()] = position[r.Path]
			}
		}
	}

	var diags diag.List
	for _, r := range rows {
		for _, p := range parsed[r.Path].Provided {
			var primaryKind unit.Kind
			switch p.ID.Kind {
			case unit.Architecture:
				primaryKind = unit.Entity
			case unit.PackageBody:
				primaryKind = unit.Package
			default:
				continue
			}
			primaryID := unit.NewID(p.ID.Library, primaryKind, p.ID.Of, "")
			primaryRow, ok := primaryPos[primaryID.Key()]
			if !ok {
				continue
			}
			if primaryRow > position[r.Path] {
				diags = append(diags, diag.New(diag.InconsistentIndex, r.Path, p.Line,
					fmt.Sprintf("%s %s is ordered before its primary unit %s", p.ID.Kind, p.ID.Name, p.ID.Of)))
			}
		}
	}
	return diags
}
