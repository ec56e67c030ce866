package resolve

import "testing"

func TestImpactOfLayersByDistance(t *testing.T) {
	res := &Result{
		Edges: []Edge{
			{From: "top.vhd", To: "mid.vhd"},
			{From: "mid.vhd", To: "leaf.vhd"},
			{From: "other.vhd", To: "leaf.vhd"},
		},
	}
	report := res.ImpactOf("leaf.vhd")
	if len(report.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %+v", report.Levels)
	}
	if len(report.Levels[0]) != 2 {
		t.Fatalf("expected mid.vhd and other.vhd at level 1, got %v", report.Levels[0])
	}
	if len(report.Levels[1]) != 1 || report.Levels[1][0] != "top.vhd" {
		t.Fatalf("expected top.vhd at level 2, got %v", report.Levels[1])
	}
}
