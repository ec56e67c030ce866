// Package lex implements the regex-level VHDL tokenizer spec.md §4.2 calls
// for: never a full parser (spec.md Non-goal 1), just enough lexical
// pattern matching to locate top-level declarations and component/package
// references. It generalizes extractSimple/patterns.go's regex fallback
// (internal/extractor/patterns.go in vhdl-lint) — vhdl-lint's primary path
// is a tree-sitter grammar, which is exactly the full-parser approach
// spec.md excludes, so only its regex fallback is grounding here.
package lex

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/vhdeps/vhdeps-go/internal/unit"
)

// RequiredKind is the kind of reference edge a required unit represents
// (spec.md §3 Reference edge).
type RequiredKind int

const (
	InstantiationDirect RequiredKind = iota
	InstantiationComponent
	PackageUse
	ArchitectureOf
	BodyOf
)

// Provided is one design unit a file declares.
type Provided struct {
	ID   unit.ID
	Line int
}

// Required is one reference a file makes that must resolve elsewhere.
type Required struct {
	ID       unit.ID // resolved library/name for instantiation-direct, package-use, architecture-of, body-of
	Kind     RequiredKind
	Line     int
	Name     string   // bare component name for InstantiationComponent (library not yet chosen)
	LibScope []string // libraries in scope at this point, "work" first, for component resolution
}

// Pragma is a recognized inline directive (spec.md §3/§6).
type Pragma struct {
	Kind string // "ignore-package", "ignore-component", "ignore-entity", "simulation-timeout"
	Name string // unit name for ignore pragmas; raw text for simulation-timeout
	Line int
}

// Anomaly is a non-fatal parse warning (spec.md ParseAnomaly).
type Anomaly struct {
	Line    int
	Message string
}

// FileUnits is everything the lexer extracted from one file.
type FileUnits struct {
	Path      string
	Provided  []Provided
	Required  []Required
	Pragmas   []Pragma
	Anomalies []Anomaly
}

var (
	entityPattern  = regexp.MustCompile(`(?i)^\s*entity\s+(\w+)\s+is\b`)
	archPattern    = regexp.MustCompile(`(?i)^\s*architecture\s+(\w+)\s+of\s+(\w+)\s+is\b`)
	pkgBodyPattern = regexp.MustCompile(`(?i)^\s*package\s+body\s+(\w+)\s+is\b`)
	packagePattern = regexp.MustCompile(`(?i)^\s*package\s+(\w+)\s+is\b`)
	configPattern  = regexp.MustCompile(`(?i)^\s*configuration\s+(\w+)\s+of\s+(\w+)\s+is\b`)
	libraryPattern = regexp.MustCompile(`(?i)^\s*library\s+([\w ,]+?)\s*;`)
	usePattern     = regexp.MustCompile(`(?i)^\s*use\s+(\w+)\.(\w+)`)

	entityInstPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*entity\s+(?:(\w+)\.)?(\w+)\s*(?:\(\s*(\w+)\s*\))?`)
	configInstPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*configuration\s+(?:(\w+)\.)?(\w+)`)
	compInstPattern   = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*component\s+(\w+)`)
	// Bare instantiation: "label : name" with no entity/configuration/component
	// keyword, recognized by the generic/port map keyword that must follow the
	// name, on the same line or the next one (grounded on patterns.go).
	bareInstPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*(\w+)\s*(?:generic|port)\b`)

	pragmaIgnorePattern  = regexp.MustCompile(`(?i)--\s*pragma\s+vhdeps\s+ignore\s+(package|component|entity)\s+(\w+)`)
	pragmaTimeoutPattern = regexp.MustCompile(`(?i)--\s*pragma\s+simulation\s+timeout\s+(.+)`)
)

var reservedBareTargets = map[string]bool{
	"entity": true, "configuration": true, "component": true,
}

// Parse lexes a file's content and extracts provided/required unit records.
// library is the file's assigned target library: every provided unit and the
// implicit architecture-of/body-of requirements carry it, while use clauses
// and instantiations keep the library as written ("work" included) and are
// mapped onto the target library during resolution.
func Parse(path string, content []byte, library string) FileUnits {
	fu := FileUnits{Path: path}

	lines := splitLines(string(content))
	libScope := []string{"work"}
	seenLib := map[string]bool{"work": true}

	var currentEntity string
	var currentPackage string

	for i, raw := range lines {
		lineNum := i + 1
		pragmaLine := raw
		stripped, anomaly := stripComment(raw)
		if anomaly != "" {
			fu.Anomalies = append(fu.Anomalies, Anomaly{Line: lineNum, Message: anomaly})
		}

		if m := pragmaIgnorePattern.FindStringSubmatch(pragmaLine); m != nil {
			fu.Pragmas = append(fu.Pragmas, Pragma{Kind: "ignore-" + strings.ToLower(m[1]), Name: strings.ToLower(m[2]), Line: lineNum})
		}
		if m := pragmaTimeoutPattern.FindStringSubmatch(pragmaLine); m != nil {
			fu.Pragmas = append(fu.Pragmas, Pragma{Kind: "simulation-timeout", Name: strings.TrimSpace(m[1]), Line: lineNum})
		}

		if stripped == "" {
			continue
		}

		if m := entityPattern.FindStringSubmatch(stripped); m != nil {
			currentEntity = m[1]
			fu.Provided = append(fu.Provided, Provided{ID: unit.NewID(library, unit.Entity, m[1], ""), Line: lineNum})
			continue
		}

		if m := archPattern.FindStringSubmatch(stripped); m != nil {
			fu.Provided = append(fu.Provided, Provided{ID: unit.NewID(library, unit.Architecture, m[1], m[2]), Line: lineNum})
			fu.Required = append(fu.Required, Required{
				ID:   unit.NewID(library, unit.Entity, m[2], ""),
				Kind: ArchitectureOf,
				Line: lineNum,
			})
			continue
		}

		if m := pkgBodyPattern.FindStringSubmatch(stripped); m != nil {
			fu.Provided = append(fu.Provided, Provided{ID: unit.NewID(library, unit.PackageBody, m[1], m[1]), Line: lineNum})
			fu.Required = append(fu.Required, Required{
				ID:   unit.NewID(library, unit.Package, m[1], ""),
				Kind: BodyOf,
				Line: lineNum,
			})
			continue
		}

		if m := packagePattern.FindStringSubmatch(stripped); m != nil {
			currentPackage = m[1]
			fu.Provided = append(fu.Provided, Provided{ID: unit.NewID(library, unit.Package, m[1], ""), Line: lineNum})
			continue
		}

		if m := configPattern.FindStringSubmatch(stripped); m != nil {
			fu.Provided = append(fu.Provided, Provided{ID: unit.NewID(library, unit.Configuration, m[1], m[2]), Line: lineNum})
			fu.Required = append(fu.Required, Required{
				ID:   unit.NewID(library, unit.Entity, m[2], ""),
				Kind: ArchitectureOf,
				Line: lineNum,
			})
			continue
		}

		if m := libraryPattern.FindStringSubmatch(stripped); m != nil {
			for _, name := range strings.Split(m[1], ",") {
				name = strings.ToLower(strings.TrimSpace(name))
				if name == "" || name == "work" || seenLib[name] {
					continue
				}
				seenLib[name] = true
				libScope = append(libScope, name)
			}
			continue
		}

		if m := usePattern.FindStringSubmatch(stripped); m != nil {
			lib := strings.ToLower(m[1])
			if lib != "std" && lib != "ieee" {
				fu.Required = append(fu.Required, Required{
					ID:   unit.NewID(lib, unit.Package, m[2], ""),
					Kind: PackageUse,
					Line: lineNum,
				})
			}
			continue
		}

		if m := entityInstPattern.FindStringSubmatch(stripped); m != nil {
			lib := m[2]
			arch := m[4]
			fu.Required = append(fu.Required, Required{
				ID:   unit.NewID(lib, unit.Entity, m[3], arch),
				Kind: InstantiationDirect,
				Line: lineNum,
			})
			continue
		}

		if m := configInstPattern.FindStringSubmatch(stripped); m != nil {
			fu.Required = append(fu.Required, Required{
				ID:   unit.NewID(m[2], unit.Configuration, m[3], ""),
				Kind: InstantiationDirect,
				Line: lineNum,
			})
			continue
		}

		if m := compInstPattern.FindStringSubmatch(stripped); m != nil {
			fu.Required = append(fu.Required, Required{
				Name:     strings.ToLower(m[2]),
				Kind:     InstantiationComponent,
				Line:     lineNum,
				LibScope: append([]string(nil), libScope...),
			})
			continue
		}

		candidate := stripped
		if i+1 < len(lines) {
			next, _ := stripComment(lines[i+1])
			candidate = stripped + " " + next
		}
		if m := bareInstPattern.FindStringSubmatch(candidate); m != nil {
			name := strings.ToLower(m[2])
			if !reservedBareTargets[name] {
				fu.Required = append(fu.Required, Required{
					Name:     name,
					Kind:     InstantiationComponent,
					Line:     lineNum,
					LibScope: append([]string(nil), libScope...),
				})
			}
			continue
		}
	}

	_ = currentEntity
	_ = currentPackage
	return fu
}

// stripComment removes a "--" end-of-line comment, tracking double-quoted
// string literals so a "--" inside a string literal is not mistaken for a
// comment start. Returns a non-empty anomaly message if an unterminated
// string literal is detected (spec.md ParseAnomaly).
func stripComment(line string) (string, string) {
	var b strings.Builder
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			b.WriteByte(c)
			if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == '-' && i+1 < len(line) && line[i+1] == '-' {
			break
		}
		b.WriteByte(c)
	}
	if inString {
		return b.String(), "unterminated string literal"
	}
	return b.String(), ""
}

func splitLines(s string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
