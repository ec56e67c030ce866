// Package diag defines the diagnostic taxonomy of spec.md §7: a tagged
// variant type for errors and warnings raised by every stage of the
// pipeline, each carrying a location and a human-readable message.
package diag

import (
	"fmt"
	"strings"
)

// Kind is the closed set of diagnostic kinds the resolver can raise.
type Kind string

const (
	IoFailure           Kind = "IoFailure"
	ParseAnomaly        Kind = "ParseAnomaly"
	DuplicateProvider   Kind = "DuplicateProvider"
	UnresolvedReference Kind = "UnresolvedReference"
	Cycle               Kind = "Cycle"
	NoTop               Kind = "NoTop"
	Style               Kind = "Style"
	InconsistentIndex   Kind = "InconsistentIndex"
)

// Severity controls whether a diagnostic aborts resolution.
type Severity string

const (
	Fatal   Severity = "fatal"
	Warning Severity = "warning"
)

// fatalByDefault mirrors the severity table in spec.md §4.6: most kinds are
// fatal unless the call site has a specific reason to downgrade them (e.g. a
// black-box consumer's unresolved reference).
var fatalByDefault = map[Kind]bool{
	IoFailure:           true,
	ParseAnomaly:        false,
	DuplicateProvider:   true,
	UnresolvedReference: true,
	Cycle:               true,
	NoTop:               true,
	Style:               true,
	InconsistentIndex:   true,
}

// Diagnostic is one entry in the accumulated diagnostic list.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	File     string
	Line     int      // 0 when not applicable
	Message  string
	Path     []string // cycle path in traversal order, first file repeated at the end; empty otherwise
}

// New builds a diagnostic with the kind's default severity.
func New(kind Kind, file string, line int, message string) Diagnostic {
	sev := Warning
	if fatalByDefault[kind] {
		sev = Fatal
	}
	return Diagnostic{Kind: kind, Severity: sev, File: file, Line: line, Message: message}
}

// Warn forces Warning severity regardless of the kind's default — used for
// black-box-permitted unresolved references and similar downgrades.
func Warn(kind Kind, file string, line int, message string) Diagnostic {
	d := New(kind, file, line, message)
	d.Severity = Warning
	return d
}

func (d Diagnostic) IsFatal() bool {
	return d.Severity == Fatal
}

func (d Diagnostic) String() string {
	loc := d.File
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", d.File, d.Line)
	}
	if loc == "" {
		return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s[%s]: %s", loc, d.Severity, d.Kind, d.Message)
}

// List is an accumulated diagnostic list. The core runs every stage to
// completion before surfacing diagnostics, so callers see every black box
// and every cycle in one pass rather than the first one encountered.
type List []Diagnostic

func (l List) Error() string {
	lines := make([]string, 0, len(l))
	for _, d := range l {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// HasFatal reports whether any diagnostic in the list is fatal.
func (l List) HasFatal() bool {
	for _, d := range l {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// Fatal returns the subset of fatal diagnostics.
func (l List) Fatal() List {
	var out List
	for _, d := range l {
		if d.IsFatal() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the subset of non-fatal diagnostics.
func (l List) Warnings() List {
	var out List
	for _, d := range l {
		if !d.IsFatal() {
			out = append(out, d)
		}
	}
	return out
}
