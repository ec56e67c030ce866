package index

import (
	"testing"

	"github.com/vhdeps/vhdeps-go/internal/config"
	"github.com/vhdeps/vhdeps-go/internal/discover"
	"github.com/vhdeps/vhdeps-go/internal/unit"
)

func TestLookupVersionDisambiguation(t *testing.T) {
	files := []discover.SourceFile{
		{Path: "u.93.vhd", Versions: map[int]bool{1993: true}},
		{Path: "u.08.vhd", Versions: map[int]bool{2008: true}},
	}
	provided := map[string][]unit.ID{
		"u.93.vhd": {unit.NewID("work", unit.Package, "u", "")},
		"u.08.vhd": {unit.NewID("work", unit.Package, "u", "")},
	}
	ix := Build(files, provided)

	id := unit.NewID("work", unit.Package, "u", "")

	res, diags := ix.Lookup(id, config.ContextSynthesis, 2008, nil)
	if len(diags) != 0 || !res.Found || res.Provider.Path != "u.08.vhd" {
		t.Fatalf("expected u.08.vhd for version 2008, got %+v diags=%v", res, diags)
	}

	res, diags = ix.Lookup(id, config.ContextSynthesis, 1993, nil)
	if len(diags) != 0 || !res.Found || res.Provider.Path != "u.93.vhd" {
		t.Fatalf("expected u.93.vhd for version 1993, got %+v diags=%v", res, diags)
	}
}

func TestLookupDuplicateProviderAtSameVersion(t *testing.T) {
	files := []discover.SourceFile{
		{Path: "b_copy.vhd", Versions: nil},
		{Path: "a_copy.vhd", Versions: nil},
	}
	provided := map[string][]unit.ID{
		"b_copy.vhd": {unit.NewID("work", unit.Package, "u", "")},
		"a_copy.vhd": {unit.NewID("work", unit.Package, "u", "")},
	}
	ix := Build(files, provided)
	id := unit.NewID("work", unit.Package, "u", "")

	res, diags := ix.Lookup(id, config.ContextSynthesis, 2008, nil)
	if len(diags) != 1 {
		t.Fatalf("expected a duplicate-provider diagnostic, got %v", diags)
	}
	if !res.Found || res.Provider.Path != "a_copy.vhd" {
		t.Fatalf("expected lexicographic tie-break to pick a_copy.vhd, got %+v", res)
	}
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	ix := Build(nil, nil)
	res, diags := ix.Lookup(unit.NewID("work", unit.Entity, "ghost", ""), config.ContextSynthesis, 2008, nil)
	if res.Found || len(diags) != 0 {
		t.Fatalf("expected not-found with no diagnostics, got %+v %v", res, diags)
	}
}

func TestLookupComponentTriesScopeInOrder(t *testing.T) {
	files := []discover.SourceFile{{Path: "lib2/e.vhd"}}
	provided := map[string][]unit.ID{
		"lib2/e.vhd": {unit.NewID("lib2", unit.Entity, "e", "")},
	}
	ix := Build(files, provided)

	res, _ := ix.LookupComponent([]string{"work", "lib2"}, "e", config.ContextSynthesis, 2008, nil)
	if !res.Found || res.Provider.ID.Library != "lib2" {
		t.Fatalf("expected component lookup to find lib2.e, got %+v", res)
	}
}
