package contract

import (
	"testing"

	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/order"
	"github.com/vhdeps/vhdeps-go/internal/resolve"
)

func TestValidateAcceptsWellFormedOutput(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := FromResult(
		[]order.Row{{Role: resolve.RoleTop, Library: "work", Version: 2008, Path: "b.vhd"}},
		diag.List{diag.New(diag.Style, "b.vhd", 3, "package name should end in _pkg")},
	)
	if err := v.Validate(out); err != nil {
		t.Fatalf("expected well-formed output to validate, got %v", err)
	}
}

func TestValidateRejectsEmptyPath(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := Output{Rows: []Row{{Role: "top", Library: "work", Version: 2008, Path: ""}}}
	if err := v.Validate(out); err == nil {
		t.Fatal("expected validation to reject an empty path")
	}
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := Output{Rows: []Row{{Role: "maybe", Library: "work", Version: 2008, Path: "x.vhd"}}}
	if err := v.Validate(out); err == nil {
		t.Fatal("expected validation to reject an unknown role")
	}
}
