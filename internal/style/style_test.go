package style

import (
	"testing"

	"github.com/vhdeps/vhdeps-go/internal/lex"
)

func TestCheckPassesCleanEntityFile(t *testing.T) {
	fu := lex.Parse("adder.vhd", []byte("entity adder is\nend entity adder;\n"), "work")
	diags := Check("adder.vhd", "adder", fu)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestCheckFlagsMultipleUnits(t *testing.T) {
	src := "entity a is\nend entity a;\nentity b is\nend entity b;\n"
	fu := lex.Parse("ab.vhd", []byte(src), "work")
	diags := Check("ab.vhd", "ab", fu)
	if len(diags) != 1 {
		t.Fatalf("expected one S1 diagnostic, got %v", diags)
	}
}

func TestCheckFlagsPackageSuffix(t *testing.T) {
	fu := lex.Parse("math.vhd", []byte("package math is\nend package math;\n"), "work")
	diags := Check("math.vhd", "math", fu)
	if len(diags) != 1 {
		t.Fatalf("expected one S2 diagnostic, got %v", diags)
	}
}

func TestCheckFlagsFilenameMismatch(t *testing.T) {
	fu := lex.Parse("counter.vhd", []byte("entity adder is\nend entity adder;\n"), "work")
	diags := Check("counter.vhd", "counter", fu)
	if len(diags) != 1 {
		t.Fatalf("expected one S3 diagnostic, got %v", diags)
	}
}
