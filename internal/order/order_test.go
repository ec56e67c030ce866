package order

import (
	"testing"

	"github.com/vhdeps/vhdeps-go/internal/lex"
	"github.com/vhdeps/vhdeps-go/internal/resolve"
)

func TestLinearizeRespectsEdges(t *testing.T) {
	res := &resolve.Result{
		Selections: map[string]resolve.Selection{
			"b.vhd":     {Path: "b.vhd", Library: "work", Role: resolve.RoleTop},
			"a_pkg.vhd": {Path: "a_pkg.vhd", Library: "work", Role: resolve.RoleDep},
		},
		Edges: []resolve.Edge{{From: "b.vhd", To: "a_pkg.vhd"}},
	}
	parsed := map[string]lex.FileUnits{
		"b.vhd":     lex.Parse("b.vhd", []byte("use work.a_pkg.all;\nentity b is\nend entity b;\n"), "work"),
		"a_pkg.vhd": lex.Parse("a_pkg.vhd", []byte("package a_pkg is\nend package a_pkg;\n"), "work"),
	}

	rows, diags := Linearize(res, parsed)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(rows) != 2 || rows[0].Path != "a_pkg.vhd" || rows[1].Path != "b.vhd" {
		t.Fatalf("expected a_pkg.vhd before b.vhd, got %+v", rows)
	}
	if rows[1].Role != resolve.RoleTop {
		t.Fatalf("expected b.vhd to carry top role, got %+v", rows[1])
	}
}

func TestLinearizeFlagsArchitectureBeforeEntity(t *testing.T) {
	res := &resolve.Result{
		Selections: map[string]resolve.Selection{
			"e_arch.vhd": {Path: "e_arch.vhd", Library: "a", Role: resolve.RoleTop},
			"e.vhd":      {Path: "e.vhd", Library: "b", Role: resolve.RoleDep},
		},
	}
	parsed := map[string]lex.FileUnits{
		"e.vhd":      lex.Parse("e.vhd", []byte("entity e is\nend entity e;\n"), "work"),
		"e_arch.vhd": lex.Parse("e_arch.vhd", []byte("architecture rtl of e is\nbegin\nend architecture rtl;\n"), "work"),
	}

	rows, diags := Linearize(res, parsed)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if len(diags) == 0 {
		t.Fatalf("expected an InconsistentIndex diagnostic when the architecture sorts before its entity")
	}
}
