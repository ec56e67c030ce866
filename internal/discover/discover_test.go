package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vhdeps/vhdeps-go/internal/config"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverParsesVersionAndContextTags(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "u.93.vhd", "package u is end package;")
	writeTemp(t, dir, "u.08.vhd", "package u is end package;")
	writeTemp(t, dir, "m.sim.vhd", "entity m is end entity;")

	cfg := &config.Config{
		Includes: []config.Include{{Path: dir, Recursive: false, Mode: config.ModeNormal, Library: "work", Pattern: "*.vhd*"}},
	}
	files, diags := Discover(cfg, dir)
	if diags.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", diags)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %+v", len(files), files)
	}

	byBase := make(map[string]SourceFile)
	for _, f := range files {
		byBase[filepath.Base(f.Path)] = f
	}

	u93 := byBase["u.93.vhd"]
	if u93.IsUniversal() || !u93.Versions[1993] {
		t.Fatalf("expected u.93.vhd compatible with 1993 only, got %+v", u93.Versions)
	}
	u08 := byBase["u.08.vhd"]
	if !u08.Versions[2008] {
		t.Fatalf("expected u.08.vhd compatible with 2008, got %+v", u08.Versions)
	}
	m := byBase["m.sim.vhd"]
	if m.Context != SimOnly {
		t.Fatalf("expected sim-only context, got %v", m.Context)
	}
}

func TestDiscoverMissingRootIsFatal(t *testing.T) {
	cfg := &config.Config{
		Includes: []config.Include{{Path: "/does/not/exist", Mode: config.ModeNormal, Library: "work", Pattern: "*.vhd*"}},
	}
	_, diags := Discover(cfg, ".")
	if !diags.HasFatal() {
		t.Fatal("expected a fatal IoFailure diagnostic for a missing root")
	}
}

func TestDiscoverStrongestModeWins(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "a.vhd", "entity a is end entity;")

	cfg := &config.Config{
		Includes: []config.Include{
			{Path: dir, Mode: config.ModeNormal, Library: "work", Pattern: "*.vhd*"},
			{Path: dir, Mode: config.ModeBlackBox, Library: "work", Pattern: "*.vhd*"},
		},
	}
	files, diags := Discover(cfg, dir)
	if diags.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", diags)
	}
	if len(files) != 1 || files[0].Mode != config.ModeBlackBox {
		t.Fatalf("expected single file in blackbox mode, got %+v", files)
	}
}

func TestBaseUnitName(t *testing.T) {
	if got := BaseUnitName("/x/y/a_pkg.93.vhd"); got != "a_pkg" {
		t.Fatalf("expected a_pkg, got %q", got)
	}
}
