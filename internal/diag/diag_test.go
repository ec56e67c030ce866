package diag

import "testing"

func TestNewAppliesDefaultSeverity(t *testing.T) {
	if d := New(IoFailure, "f.vhd", 0, "boom"); d.Severity != Fatal {
		t.Fatalf("expected IoFailure to default fatal, got %v", d.Severity)
	}
	if d := New(ParseAnomaly, "f.vhd", 3, "odd"); d.Severity != Warning {
		t.Fatalf("expected ParseAnomaly to default warning, got %v", d.Severity)
	}
}

func TestWarnForcesWarning(t *testing.T) {
	d := Warn(Cycle, "f.vhd", 0, "would be fatal")
	if d.Severity != Warning {
		t.Fatalf("expected Warn to force warning, got %v", d.Severity)
	}
}

func TestListFiltering(t *testing.T) {
	list := List{
		New(Style, "a.vhd", 1, "s1"),
		Warn(UnresolvedReference, "b.vhd", 2, "black box"),
	}
	if !list.HasFatal() {
		t.Fatal("expected HasFatal true")
	}
	if len(list.Fatal()) != 1 || len(list.Warnings()) != 1 {
		t.Fatalf("expected one fatal and one warning, got %+v", list)
	}
}
