// Package contract validates the resolver's public result against a CUE
// schema before it crosses the library boundary (spec.md §6 "the textual
// compile-order format above is frozen"). Adapted from
// internal/validator.Validator — same embed-schema-and-unify shape, same
// "crash early, crash loud" philosophy — but validating a freshly authored
// schema for this resolver's own row/diagnostic contract rather than the
// lint tool's fact tables (no schema.cue/output_schema.cue survived
// distillation to adapt directly).
package contract

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/order"
)

//go:embed schema.cue
var schemaFS embed.FS

// Row and Diagnostic are the wire-shaped (lowercase JSON field) mirrors of
// order.Row and diag.Diagnostic validated against #Output.
type Row struct {
	Role    string `json:"role"`
	Library string `json:"library"`
	Version int    `json:"version"`
	Path    string `json:"path"`
}

type Diagnostic struct {
	Kind     string   `json:"kind"`
	Severity string   `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
	Path     []string `json:"path,omitempty"`
}

// Output is the JSON-serializable payload validated against #Output.
type Output struct {
	Rows        []Row        `json:"rows"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// FromResult converts the resolver/orderer's native types into the wire
// shape the schema describes.
func FromResult(rows []order.Row, diags diag.List) Output {
	out := Output{Rows: make([]Row, 0, len(rows)), Diagnostics: make([]Diagnostic, 0, len(diags))}
	for _, r := range rows {
		out.Rows = append(out.Rows, Row{
			Role:    string(r.Role),
			Library: r.Library,
			Version: r.Version,
			Path:    r.Path,
		})
	}
	for _, d := range diags {
		out.Diagnostics = append(out.Diagnostics, Diagnostic{
			Kind:     string(d.Kind),
			Severity: string(d.Severity),
			File:     d.File,
			Line:     d.Line,
			Message:  d.Message,
			Path:     d.Path,
		})
	}
	return out
}

// Validator checks a resolver Output against the embedded #Output schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New loads and compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks out against #Output, returning a wrapped error naming the
// first field-level mismatch CUE found.
func (v *Validator) Validate(out Output) error {
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling output to JSON: %w", err)
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling output as CUE: %w", dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath("#Output"))
	if def.Err() != nil {
		return fmt.Errorf("looking up #Output definition: %w", def.Err())
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("output contract violated: %w", err)
	}
	return nil
}

// ValidationErrors returns every field-level mismatch, for callers (tests,
// diagnostics) that want the full list rather than the first wrapped error.
func (v *Validator) ValidationErrors(out Output) []string {
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	def := v.schema.LookupPath(cue.ParsePath("#Output"))
	if def.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", def.Err())}
	}

	unified := def.Unify(dataValue)
	validateErr := unified.Validate()
	if validateErr == nil {
		return nil
	}

	var out2 []string
	for _, e := range errors.Errors(validateErr) {
		out2 = append(out2, e.Error())
	}
	return out2
}
