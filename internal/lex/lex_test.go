package lex

import "testing"

func TestParseEntityAndArchitecture(t *testing.T) {
	src := `
library ieee;
use ieee.std_logic_1164.all;

entity adder is
  port (a, b : in std_logic; s : out std_logic);
end entity adder;

architecture rtl of adder is
begin
end architecture rtl;
`
	fu := Parse("adder.vhd", []byte(src), "work")
	if len(fu.Provided) != 2 {
		t.Fatalf("expected 2 provided units, got %d: %+v", len(fu.Provided), fu.Provided)
	}
	if fu.Provided[0].ID.Kind != 0 {
		t.Fatalf("expected entity first, got %v", fu.Provided[0].ID)
	}
	var sawArchOf bool
	for _, r := range fu.Required {
		if r.Kind == ArchitectureOf && r.ID.Name == "adder" {
			sawArchOf = true
		}
	}
	if !sawArchOf {
		t.Fatalf("expected an architecture-of requirement on adder, got %+v", fu.Required)
	}
}

func TestParsePackageAndBody(t *testing.T) {
	src := `
package math_pkg is
  function add(a, b : integer) return integer;
end package math_pkg;

package body math_pkg is
  function add(a, b : integer) return integer is
  begin
    return a + b;
  end function;
end package body math_pkg;
`
	fu := Parse("math_pkg.vhd", []byte(src), "work")
	if len(fu.Provided) != 2 {
		t.Fatalf("expected 2 provided units, got %d: %+v", len(fu.Provided), fu.Provided)
	}
	var sawBodyOf bool
	for _, r := range fu.Required {
		if r.Kind == BodyOf && r.ID.Name == "math_pkg" {
			sawBodyOf = true
		}
	}
	if !sawBodyOf {
		t.Fatalf("expected a body-of requirement on math_pkg, got %+v", fu.Required)
	}
}

func TestParseUseClauseIgnoresBuiltinLibraries(t *testing.T) {
	src := `
library ieee;
use ieee.numeric_std.all;
use work.helpers_pkg.all;
`
	fu := Parse("top.vhd", []byte(src), "work")
	if len(fu.Required) != 1 {
		t.Fatalf("expected only the work.helpers_pkg use-clause, got %+v", fu.Required)
	}
	if fu.Required[0].ID.Library != "work" || fu.Required[0].ID.Name != "helpers_pkg" {
		t.Fatalf("unexpected required unit: %+v", fu.Required[0])
	}
}

func TestParseInstantiations(t *testing.T) {
	src := `
architecture rtl of top is
begin
  u1 : entity work.adder(rtl)
    port map (a => x, b => y, s => z);
  u2 : my_counter
    generic map (WIDTH => 8)
    port map (clk => clk);
  u3 : component decoder
    port map (sel => sel);
end architecture rtl;
`
	fu := Parse("top.vhd", []byte(src), "work")

	var direct, bare, comp int
	for _, r := range fu.Required {
		switch r.Kind {
		case InstantiationDirect:
			direct++
			if r.ID.Name != "adder" || r.ID.Of != "rtl" {
				t.Fatalf("unexpected direct instantiation: %+v", r)
			}
		case InstantiationComponent:
			if r.Name == "my_counter" {
				bare++
			} else if r.Name == "decoder" {
				comp++
			}
		}
	}
	if direct != 1 {
		t.Fatalf("expected 1 direct instantiation, got %d", direct)
	}
	if bare != 1 {
		t.Fatalf("expected bare instantiation of my_counter, got required=%+v", fu.Required)
	}
	if comp != 1 {
		t.Fatalf("expected component instantiation of decoder, got required=%+v", fu.Required)
	}
}

func TestParsePragmas(t *testing.T) {
	src := `
  -- pragma vhdeps ignore component legacy_ram
  -- pragma simulation timeout 10 ms
entity m is
end entity m;
`
	fu := Parse("m.vhd", []byte(src), "work")
	if len(fu.Pragmas) != 2 {
		t.Fatalf("expected 2 pragmas, got %+v", fu.Pragmas)
	}
	if fu.Pragmas[0].Kind != "ignore-component" || fu.Pragmas[0].Name != "legacy_ram" {
		t.Fatalf("unexpected pragma: %+v", fu.Pragmas[0])
	}
	if fu.Pragmas[1].Kind != "simulation-timeout" {
		t.Fatalf("unexpected pragma: %+v", fu.Pragmas[1])
	}
}

func TestStripCommentKeepsStringsWithDashes(t *testing.T) {
	got, anomaly := stripComment(`report "a--b" severity note; -- trailing`)
	if anomaly != "" {
		t.Fatalf("unexpected anomaly: %s", anomaly)
	}
	want := `report "a--b" severity note; `
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
