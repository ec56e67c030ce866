// Package resolve implements the resolver of spec.md §4.4: reverse
// reachability from a top set, version/context-aware lookups through the
// unit index, black-box and ignore-pragma satisfaction, and file-level
// cycle detection. Grounded on the BFS worklist shape of
// internal/indexer/deps.go's buildDependentsGraph/resolveDependencies,
// generalized from "who depends on this lint symbol" to "what must this
// file's references resolve to".
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vhdeps/vhdeps-go/internal/config"
	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/discover"
	"github.com/vhdeps/vhdeps-go/internal/index"
	"github.com/vhdeps/vhdeps-go/internal/lex"
	"github.com/vhdeps/vhdeps-go/internal/unit"
)

// Role marks whether a selected file was an explicit top or was pulled in
// as a dependency.
type Role string

const (
	RoleTop Role = "top"
	RoleDep Role = "dep"
)

// Selection is one file chosen by the resolver, with the VHDL version it
// was selected under.
type Selection struct {
	Path    string
	Library string
	Version int // 0 means universal, emitted as "----"
	Role    Role
}

// Edge is a file-level dependency: From requires something To provides.
type Edge struct {
	From string
	To   string
}

// Result is the resolver's output: the file-level DAG plus the selections
// that feed the orderer (spec.md §3 "Resolution result").
type Result struct {
	Selections map[string]Selection
	Edges      []Edge
	Tops       map[string]bool
}

// substituteWork maps the VHDL keyword "work" onto the consumer file's
// assigned target library (spec.md §3 "work maps to the file's assigned
// target library").
func substituteWork(lib, consumerLibrary string) string {
	if lib == "work" || lib == "" {
		return consumerLibrary
	}
	return lib
}

func pragmaIgnored(pragmas []lex.Pragma, kind, name string) bool {
	for _, p := range pragmas {
		if p.Kind == kind && p.Name == name {
			return true
		}
	}
	return false
}

// findTops matches top glob patterns against every provided entity name
// across the whole file set (spec.md §4.1 "top patterns"), then resolves
// each match through the index to pick the winning provider.
func findTops(ix *index.Index, provided map[string][]unit.ID, patterns []string, ctx config.Context, version int) (map[string]Selection, diag.List) {
	var diags diag.List
	seen := make(map[string]bool)
	tops := make(map[string]Selection)

	paths := make([]string, 0, len(provided))
	for p := range provided {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, id := range provided[path] {
			if id.Kind != unit.Entity {
				continue
			}
			key := id.Key()
			if seen[key] {
				continue
			}
			matched := false
			for _, pat := range patterns {
				if ok, _ := doublestar.Match(strings.ToLower(pat), id.Name); ok {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			seen[key] = true

			res, idxDiags := ix.Lookup(id, ctx, version, nil)
			diags = append(diags, idxDiags...)
			if !res.Found {
				continue
			}
			tops[res.Provider.Path] = Selection{
				Path:    res.Provider.Path,
				Library: res.Provider.ID.Library,
				Version: res.Version,
				Role:    RoleTop,
			}
		}
	}
	return tops, diags
}

// resolveRequirement settles a single reference against the index,
// returning the provider path it resolved to ("" if unsatisfied or
// satisfied purely by fiat with nothing to link to).
func resolveRequirement(ix *index.Index, consumer discover.SourceFile, fu lex.FileUnits, req lex.Required, ctx config.Context, version int, ignoreLibs map[string]bool, tops map[string]bool) (string, int, diag.List) {
	var diags diag.List

	if req.Kind == lex.InstantiationComponent {
		scope := make([]string, len(req.LibScope))
		for i, lib := range req.LibScope {
			scope[i] = substituteWork(lib, consumer.Library)
		}
		if pragmaIgnored(fu.Pragmas, "ignore-component", req.Name) {
			return "", 0, diags
		}
		res, idxDiags := ix.LookupComponent(scope, req.Name, ctx, version, tops)
		diags = append(diags, idxDiags...)
		if res.Found {
			return res.Provider.Path, res.Version, diags
		}
		if consumer.Mode == config.ModeBlackBox {
			diags = append(diags, diag.Warn(diag.UnresolvedReference, consumer.Path, req.Line,
				fmt.Sprintf("component %q not found (black-box)", req.Name)))
		} else {
			diags = append(diags, diag.New(diag.UnresolvedReference, consumer.Path, req.Line,
				fmt.Sprintf("component %q not found", req.Name)))
		}
		return "", 0, diags
	}

	id := req.ID
	id.Library = substituteWork(id.Library, consumer.Library)

	pragmaKind := "ignore-package"
	if id.Kind == unit.Entity || id.Kind == unit.Configuration {
		pragmaKind = "ignore-entity"
	}
	if pragmaIgnored(fu.Pragmas, pragmaKind, id.Name) {
		return "", 0, diags
	}

	if unit.IsBuiltinLibrary(id.Library) || ignoreLibs[id.Library] {
		return "", 0, diags
	}

	res, idxDiags := ix.Lookup(id, ctx, version, tops)
	diags = append(diags, idxDiags...)
	if res.Found {
		return res.Provider.Path, res.Version, diags
	}

	if consumer.Mode == config.ModeBlackBox {
		diags = append(diags, diag.Warn(diag.UnresolvedReference, consumer.Path, req.Line,
			fmt.Sprintf("%s %s.%s not found (black-box)", id.Kind, id.Library, id.Name)))
	} else {
		diags = append(diags, diag.New(diag.UnresolvedReference, consumer.Path, req.Line,
			fmt.Sprintf("%s %s.%s not found", id.Kind, id.Library, id.Name)))
	}
	return "", 0, diags
}

// Resolve performs reverse reachability from the top set and builds the
// file-level dependency DAG (spec.md §4.4).
func Resolve(
	ix *index.Index,
	filesByPath map[string]discover.SourceFile,
	parsed map[string]lex.FileUnits,
	provided map[string][]unit.ID,
	topPatterns []string,
	ctx config.Context,
	version int,
	ignoreLibs map[string]bool,
) (*Result, diag.List) {
	topSelections, diags := findTops(ix, provided, topPatterns, ctx, version)
	if len(topSelections) == 0 {
		diags = append(diags, diag.New(diag.NoTop, "", 0, "no top units matched the configured top patterns"))
		return &Result{Selections: map[string]Selection{}, Tops: map[string]bool{}}, diags
	}

	res, bfsDiags := resolveFrom(ix, filesByPath, parsed, topSelections, ctx, version, ignoreLibs)
	diags = append(diags, bfsDiags...)
	return res, diags
}

// ResolveAll computes one independent resolution per matched top file
// (spec.md §8 SC6: each top's compile order contains only what it actually
// reaches, not the union of every top's dependencies).
func ResolveAll(
	ix *index.Index,
	filesByPath map[string]discover.SourceFile,
	parsed map[string]lex.FileUnits,
	provided map[string][]unit.ID,
	topPatterns []string,
	ctx config.Context,
	version int,
	ignoreLibs map[string]bool,
) (map[string]*Result, diag.List) {
	topSelections, diags := findTops(ix, provided, topPatterns, ctx, version)
	if len(topSelections) == 0 {
		diags = append(diags, diag.New(diag.NoTop, "", 0, "no top units matched the configured top patterns"))
		return nil, diags
	}

	paths := make([]string, 0, len(topSelections))
	for p := range topSelections {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	results := make(map[string]*Result, len(paths))
	for _, path := range paths {
		res, bfsDiags := resolveFrom(ix, filesByPath, parsed, map[string]Selection{path: topSelections[path]}, ctx, version, ignoreLibs)
		diags = append(diags, bfsDiags...)
		results[path] = res
	}
	return results, diags
}

// resolveFrom runs the reverse-reachability worklist from an already
// resolved top set.
func resolveFrom(
	ix *index.Index,
	filesByPath map[string]discover.SourceFile,
	parsed map[string]lex.FileUnits,
	topSelections map[string]Selection,
	ctx config.Context,
	version int,
	ignoreLibs map[string]bool,
) (*Result, diag.List) {
	var diags diag.List

	selections := make(map[string]Selection, len(topSelections))
	tops := make(map[string]bool, len(topSelections))
	worklist := make([]string, 0, len(topSelections))
	for path, sel := range topSelections {
		selections[path] = sel
		tops[path] = true
		worklist = append(worklist, path)
	}
	sort.Strings(worklist)

	var edges []Edge
	visited := make(map[string]bool)

	for len(worklist) > 0 {
		path := worklist[0]
		worklist = worklist[1:]
		if visited[path] {
			continue
		}
		visited[path] = true

		consumer, ok := filesByPath[path]
		if !ok {
			continue
		}
		fu := parsed[path]

		for _, req := range fu.Required {
			providerPath, providerVersion, reqDiags := resolveRequirement(ix, consumer, fu, req, ctx, version, ignoreLibs, tops)
			diags = append(diags, reqDiags...)
			if providerPath == "" || providerPath == path {
				continue
			}
			edges = append(edges, Edge{From: path, To: providerPath})
			if _, seen := selections[providerPath]; !seen {
				providerFile := filesByPath[providerPath]
				selections[providerPath] = Selection{
					Path:    providerPath,
					Library: providerFile.Library,
					Version: providerVersion,
					Role:    RoleDep,
				}
				worklist = append(worklist, providerPath)
			}
		}

		// Selecting an entity or package must also pull in its known
		// secondary units (spec.md §4.4: every reachable architecture of a
		// selected entity is included; a selected package's body is included
		// if one is known), not just what this file itself requires.
		for _, p := range fu.Provided {
			switch p.ID.Kind {
			case unit.Entity:
				archs := ix.ArchitecturesOf(p.ID.Library, p.ID.Name, ctx, version)
				if len(archs) == 0 {
					continue
				}
				// spec.md §8 SC2: a bare entity is only an interface: once an
				// architecture elaborates it, the architecture becomes the
				// top and the entity is demoted to a dep of it.
				wasTop := tops[path]
				pulledOther := false
				for _, arch := range archs {
					if arch.Path == path {
						continue
					}
					pulledOther = true
					edges = append(edges, Edge{From: arch.Path, To: path})
					role := RoleDep
					if wasTop {
						role = RoleTop
					}
					if sel, seen := selections[arch.Path]; !seen {
						selections[arch.Path] = Selection{
							Path:    arch.Path,
							Library: arch.ID.Library,
							Version: achievedVersion(arch, version),
							Role:    role,
						}
						worklist = append(worklist, arch.Path)
					} else if wasTop && sel.Role != RoleTop {
						sel.Role = RoleTop
						selections[arch.Path] = sel
					}
					if wasTop {
						tops[arch.Path] = true
					}
				}
				if wasTop && pulledOther {
					delete(tops, path)
					sel := selections[path]
					sel.Role = RoleDep
					selections[path] = sel
				}
			case unit.Package:
				if body, ok := ix.BodyOf(p.ID.Library, p.ID.Name, ctx, version); ok && body.Path != path {
					edges = append(edges, Edge{From: body.Path, To: path})
					if _, seen := selections[body.Path]; !seen {
						selections[body.Path] = Selection{
							Path:    body.Path,
							Library: body.ID.Library,
							Version: achievedVersion(body, version),
							Role:    RoleDep,
						}
						worklist = append(worklist, body.Path)
					}
				}
			}
		}
	}

	diags = append(diags, detectCycles(edges)...)

	return &Result{Selections: selections, Edges: dedupeEdges(edges), Tops: tops}, diags
}

// achievedVersion mirrors index.Provider's private scoring (spec.md §4.3
// step 3) for the secondary units pulled in directly through
// ArchitecturesOf/BodyOf, which bypass Lookup and so never get a Result.Version.
func achievedVersion(p index.Provider, requested int) int {
	if len(p.Versions) == 0 {
		return 0
	}
	best := 0
	for v := range p.Versions {
		if v <= requested && v > best {
			best = v
		}
	}
	return best
}

func dedupeEdges(edges []Edge) []Edge {
	seen := make(map[Edge]bool, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// detectCycles walks the edge set for cycles. Self-loops are never present
// (Resolve drops them before recording an edge), so any cycle found here is
// a genuine cross-file cycle and is fatal (spec.md §4.4 cycle policy).
func detectCycles(edges []Edge) diag.List {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	for from := range adj {
		sort.Strings(adj[from])
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var diags diag.List
	var stack []string

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		stack = append(stack, node)
		for _, next := range adj[node] {
			switch color[next] {
			case white:
				if visit(next) {
					return true
				}
			case gray:
				idx := indexOf(stack, next)
				cyclePath := append(append([]string(nil), stack[idx:]...), next)
				diags = append(diags, diag.Diagnostic{
					Kind:     diag.Cycle,
					Severity: diag.Fatal,
					File:     cyclePath[0],
					Message:  fmt.Sprintf("dependency cycle: %s", strings.Join(cyclePath, " -> ")),
					Path:     cyclePath,
				})
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
		return false
	}

	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return diags
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return 0
}
