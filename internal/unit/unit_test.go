package unit

import "testing"

func TestNewIDFoldsCaseAndDefaultsLibrary(t *testing.T) {
	id := NewID("", Entity, "ADDER", "")
	if id.Library != "work" || id.Name != "adder" {
		t.Fatalf("unexpected id: %+v", id)
	}
}

func TestKeyExcludesOf(t *testing.T) {
	a := NewID("work", Architecture, "rtl", "adder")
	b := NewID("work", Architecture, "rtl", "other")
	if a.Key() != b.Key() {
		t.Fatalf("expected Of to be excluded from Key, got %q vs %q", a.Key(), b.Key())
	}
}

func TestIsBuiltinLibrary(t *testing.T) {
	for _, lib := range []string{"ieee", "IEEE", "std"} {
		if !IsBuiltinLibrary(lib) {
			t.Fatalf("expected %q to be a builtin library", lib)
		}
	}
	if IsBuiltinLibrary("work") {
		t.Fatal("work must not be treated as a builtin library")
	}
}
