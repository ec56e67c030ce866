// Package index builds the unit index spec.md §4.3 describes: a map from
// case-folded (library, kind, name) to the files that provide it, with a
// lookup contract that disambiguates by simulation/synthesis context and
// VHDL version. Grounded on the SymbolTable in internal/indexer/indexer.go,
// which plays the same "library-qualified name -> declaring file" role for
// lint symbols.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vhdeps/vhdeps-go/internal/config"
	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/discover"
	"github.com/vhdeps/vhdeps-go/internal/unit"
)

// Provider is one file's claim to provide a design unit.
type Provider struct {
	ID       unit.ID
	Path     string
	Versions map[int]bool
	Context  discover.Context
	Mode     config.Mode
}

func (p Provider) isUniversal() bool { return len(p.Versions) == 0 }

func (p Provider) eligibleFor(ctx config.Context) bool {
	switch p.Context {
	case discover.Universal:
		return true
	case discover.SimOnly:
		return ctx == config.ContextSimulation
	case discover.SynOnly:
		return ctx == config.ContextSynthesis
	}
	return true
}

func (p Provider) compatibleWith(version int) bool {
	if p.isUniversal() {
		return true
	}
	return p.Versions[version]
}

// intersectsUpTo reports whether the provider has any compatible version at
// or below the requested one (spec.md §4.3 step 2 fallback).
func (p Provider) intersectsUpTo(version int) bool {
	if p.isUniversal() {
		return true
	}
	for v := range p.Versions {
		if v <= version {
			return true
		}
	}
	return false
}

// achievedVersion is the version this provider contributes when competing
// for "highest compatible version <= requested" (spec.md §4.3 step 3).
// Universal providers are compatible with anything, so they achieve the
// requested version itself — the maximum any candidate can reach.
func (p Provider) achievedVersion(requested int) (int, bool) {
	if p.isUniversal() {
		return requested, true
	}
	best := 0
	found := false
	for v := range p.Versions {
		if v <= requested && v > best {
			best = v
			found = true
		}
	}
	return best, found
}

// Index is the built, read-only mapping described in spec.md §4.3. Safe for
// concurrent lookups once Build has returned (spec.md §5).
type Index struct {
	byKey   map[string][]Provider
	byOwner map[string][]Provider
}

// Build constructs the index from every file's parsed provided units.
func Build(files []discover.SourceFile, provided map[string][]unit.ID) *Index {
	ix := &Index{byKey: make(map[string][]Provider), byOwner: make(map[string][]Provider)}
	byPath := make(map[string]discover.SourceFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	paths := make([]string, 0, len(provided))
	for p := range provided {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		sf, ok := byPath[path]
		if !ok {
			continue
		}
		for _, id := range provided[path] {
			p := Provider{ID: id, Path: path, Versions: sf.Versions, Context: sf.Context, Mode: sf.Mode}
			ix.byKey[id.Key()] = append(ix.byKey[id.Key()], p)
			if id.Of != "" {
				ix.byOwner[ownerKey(id.Library, id.Kind, id.Of)] = append(ix.byOwner[ownerKey(id.Library, id.Kind, id.Of)], p)
			}
		}
	}
	return ix
}

func ownerKey(library string, kind unit.Kind, of string) string {
	return strings.ToLower(library) + "|" + kind.String() + "|" + strings.ToLower(of)
}

// Result is the outcome of one lookup: the winning provider and the VHDL
// version it was selected under (0 means universal, emitted as "----").
type Result struct {
	Provider Provider
	Version  int
	Found    bool
}

// Lookup resolves a design unit identifier per spec.md §4.3 steps 1-4.
// tops is the set of paths the caller explicitly designated as top files,
// used as the first tie-break among equally-qualified candidates.
func (ix *Index) Lookup(id unit.ID, ctx config.Context, requested int, tops map[string]bool) (Result, diag.List) {
	candidates := ix.byKey[id.Key()]
	if len(candidates) == 0 {
		return Result{}, nil
	}

	ctxFiltered := make([]Provider, 0, len(candidates))
	for _, c := range candidates {
		if c.eligibleFor(ctx) {
			ctxFiltered = append(ctxFiltered, c)
		}
	}
	if len(ctxFiltered) == 0 {
		return Result{}, nil
	}

	verFiltered := make([]Provider, 0, len(ctxFiltered))
	for _, c := range ctxFiltered {
		if c.compatibleWith(requested) {
			verFiltered = append(verFiltered, c)
		}
	}
	if len(verFiltered) == 0 {
		for _, c := range ctxFiltered {
			if c.intersectsUpTo(requested) {
				verFiltered = append(verFiltered, c)
			}
		}
	}
	if len(verFiltered) == 0 {
		return Result{}, nil
	}

	type scored struct {
		p        Provider
		achieved int
	}
	var scoredCandidates []scored
	best := -1
	for _, c := range verFiltered {
		achieved, ok := c.achievedVersion(requested)
		if !ok {
			continue
		}
		scoredCandidates = append(scoredCandidates, scored{p: c, achieved: achieved})
		if achieved > best {
			best = achieved
		}
	}
	if len(scoredCandidates) == 0 {
		return Result{}, nil
	}

	var winners []Provider
	for _, sc := range scoredCandidates {
		if sc.achieved == best {
			winners = append(winners, sc.p)
		}
	}

	var diags diag.List
	chosen := winners[0]
	if len(winners) > 1 {
		// Prefer a candidate the caller already designated a top.
		pickedByTop := false
		for _, w := range winners {
			if tops[w.Path] {
				chosen = w
				pickedByTop = true
				break
			}
		}
		if !pickedByTop {
			sort.Slice(winners, func(i, j int) bool { return winners[i].Path < winners[j].Path })
			chosen = winners[0]
		}

		distinctPaths := make(map[string]bool)
		for _, w := range winners {
			distinctPaths[w.Path] = true
		}
		if len(distinctPaths) > 1 {
			paths := make([]string, 0, len(distinctPaths))
			for p := range distinctPaths {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			diags = append(diags, diag.New(diag.DuplicateProvider, chosen.Path, 0,
				fmt.Sprintf("multiple files provide %s %q in library %q for overlapping versions: %s",
					id.Kind, id.Name, id.Library, strings.Join(paths, ", "))))
		}
	}

	version := best
	if chosen.isUniversal() {
		version = 0
	}
	return Result{Provider: chosen, Version: version, Found: true}, diags
}

// LookupComponent tries entity(lib, name) for each library in scope, in
// order, returning the first hit (spec.md §4.3 "component references").
func (ix *Index) LookupComponent(scope []string, name string, ctx config.Context, requested int, tops map[string]bool) (Result, diag.List) {
	for _, lib := range scope {
		id := unit.NewID(lib, unit.Entity, name, "")
		res, diags := ix.Lookup(id, ctx, requested, tops)
		if res.Found {
			return res, diags
		}
	}
	return Result{}, nil
}

// ArchitecturesOf returns every architecture bound to the given entity that
// is eligible in ctx and compatible with requested. Unlike Lookup, this
// never picks a single winner: spec.md §4.4 says "if multiple architectures
// exist for an entity, all architectures whose files are reachable are
// included", so every match is a selection candidate.
func (ix *Index) ArchitecturesOf(library, name string, ctx config.Context, requested int) []Provider {
	return ix.ownersFor(library, unit.Architecture, name, ctx, requested)
}

// BodyOf returns the package body bound to the given package, if one is
// known and reachable (spec.md §4.4: "if the package is selected and a body
// is known, the body is included"). Unlike architectures, at most one body
// is meaningful per package, so ties are broken lexicographically like Lookup.
func (ix *Index) BodyOf(library, name string, ctx config.Context, requested int) (Provider, bool) {
	owners := ix.ownersFor(library, unit.PackageBody, name, ctx, requested)
	if len(owners) == 0 {
		return Provider{}, false
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].Path < owners[j].Path })
	return owners[0], true
}

func (ix *Index) ownersFor(library string, kind unit.Kind, of string, ctx config.Context, requested int) []Provider {
	candidates := ix.byOwner[ownerKey(library, kind, of)]
	out := make([]Provider, 0, len(candidates))
	for _, c := range candidates {
		if !c.eligibleFor(ctx) {
			continue
		}
		if c.compatibleWith(requested) || c.intersectsUpTo(requested) {
			out = append(out, c)
		}
	}
	return out
}
