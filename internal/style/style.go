// Package style implements the strict-mode file rules of spec.md §4.1/§4.6:
// one primary unit per file, package name suffix, filename/unit-name match.
// It is a stateless pass over already-parsed files, grounded on the
// lint-rule shape in internal/extractor (a rule is a pure function from
// parsed facts to diagnostics, nothing stateful).
package style

import (
	"fmt"
	"strings"

	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/lex"
	"github.com/vhdeps/vhdeps-go/internal/unit"
)

// Check runs S1-S3 against one strict-mode file's parsed units. baseName is
// the filename with tags and extension stripped (discover.BaseUnitName).
func Check(path, baseName string, fu lex.FileUnits) diag.List {
	var diags diag.List

	var entities, packages []string
	for _, p := range fu.Provided {
		switch p.ID.Kind {
		case unit.Entity:
			entities = append(entities, p.ID.Name)
		case unit.Package:
			packages = append(packages, p.ID.Name)
		}
	}

	// S1: exactly one entity XOR exactly one package.
	oneEntity := len(entities) == 1 && len(packages) == 0
	onePackage := len(packages) == 1 && len(entities) == 0
	if !oneEntity && !onePackage {
		diags = append(diags, diag.New(diag.Style, path, 0,
			fmt.Sprintf("strict mode requires exactly one entity or exactly one package per file, found %d entities and %d packages", len(entities), len(packages))))
		return diags
	}

	var primary string
	if oneEntity {
		primary = entities[0]
	} else {
		primary = packages[0]
		// S2: package name ends in _pkg.
		if !strings.HasSuffix(primary, "_pkg") {
			diags = append(diags, diag.New(diag.Style, path, 0,
				fmt.Sprintf("package %q must have a name ending in \"_pkg\"", primary)))
		}
	}

	// S3: basename (tags/extension stripped) matches the primary unit name.
	if !strings.EqualFold(baseName, primary) {
		diags = append(diags, diag.New(diag.Style, path, 0,
			fmt.Sprintf("filename %q does not match primary unit name %q", baseName, primary)))
	}

	return diags
}
