// Package unit defines the identifiers VHDL design units are addressed by
// throughout the resolver: the (library, kind, name) tuple spec.md calls a
// design unit identifier, case-folded because VHDL identifiers are
// case-insensitive.
package unit

import "strings"

// Kind is the kind of design unit a file can provide.
type Kind int

const (
	Entity Kind = iota
	Architecture
	Package
	PackageBody
	Configuration
)

func (k Kind) String() string {
	switch k {
	case Entity:
		return "entity"
	case Architecture:
		return "architecture"
	case Package:
		return "package"
	case PackageBody:
		return "package-body"
	case Configuration:
		return "configuration"
	default:
		return "unknown"
	}
}

// ID identifies a design unit: library, kind, and case-folded name.
// Architecture and PackageBody are secondary units; Of names their
// primary unit (the entity an architecture belongs to, or the package a
// body belongs to) so the index can enforce the entity/architecture and
// package/body ordering rules.
type ID struct {
	Library string
	Kind    Kind
	Name    string
	Of      string
}

// NewID builds a case-folded identifier. Library defaults to "work" when empty.
func NewID(library string, kind Kind, name, of string) ID {
	if library == "" {
		library = "work"
	}
	return ID{
		Library: strings.ToLower(library),
		Kind:    kind,
		Name:    strings.ToLower(name),
		Of:      strings.ToLower(of),
	}
}

// Key is the lookup key for the unit index: library|kind|name. Of is
// intentionally excluded — the index groups providers by (library, kind,
// name) regardless of which primary unit a secondary unit claims to extend;
// a mismatched Of is a resolver-time concern, not an index identity concern.
func (id ID) Key() string {
	var b strings.Builder
	b.WriteString(id.Library)
	b.WriteByte('|')
	b.WriteString(id.Kind.String())
	b.WriteByte('|')
	b.WriteString(id.Name)
	return b.String()
}

// Builtin libraries are satisfied by fiat — they exist outside any file
// this resolver ever sees.
func IsBuiltinLibrary(lib string) bool {
	lib = strings.ToLower(lib)
	return lib == "ieee" || lib == "std"
}
