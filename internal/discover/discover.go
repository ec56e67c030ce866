// Package discover enumerates candidate VHDL source files from a set of
// inclusion directives (spec.md §4.1), annotating each with its compatible
// VHDL versions, simulation/synthesis context, inclusion mode, and target
// library. It replaces the hand-rolled "**" glob walker
// (internal/config/files.go's expandDoubleStarGlob/matchSuffix) with
// github.com/bmatcuk/doublestar/v4, the dependency standardbeagle/lci
// carries for the same job.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vhdeps/vhdeps-go/internal/config"
	"github.com/vhdeps/vhdeps-go/internal/diag"
)

// Context is the file's declared simulation/synthesis eligibility.
type Context int

const (
	Universal Context = iota
	SimOnly
	SynOnly
)

// versionTags maps the two-digit filename tag to the four-digit VHDL year
// (spec.md §6 filename tag format).
var versionTags = map[string]int{
	"87": 1987,
	"93": 1993,
	"02": 2002,
	"08": 2008,
	"19": 2019,
}

// SourceFile is the immutable, path-identified record spec.md §3 describes.
type SourceFile struct {
	Path     string
	Library  string
	Versions map[int]bool // empty means universal (compatible with any requested version)
	Context  Context
	Mode     config.Mode
}

// IsUniversal reports whether the file carries no version tag.
func (f SourceFile) IsUniversal() bool {
	return len(f.Versions) == 0
}

// CompatibleWith reports whether the file may be selected for the requested
// version: universal files are always compatible; tagged files must carry
// that exact tag (spec.md §4.3 step 2 falls back to range intersection,
// which callers apply themselves via Versions).
func (f SourceFile) CompatibleWith(version int) bool {
	if f.IsUniversal() {
		return true
	}
	return f.Versions[version]
}

// EligibleFor reports whether the file is visible in the given evaluation
// context (spec.md §4.3 step 1).
func (f SourceFile) EligibleFor(ctx config.Context) bool {
	switch f.Context {
	case Universal:
		return true
	case SimOnly:
		return ctx == config.ContextSimulation
	case SynOnly:
		return ctx == config.ContextSynthesis
	}
	return true
}

// Discover expands every inclusion directive (plus environment-supplied
// ones) into a deduplicated, annotated file set. A missing include root is
// a fatal IoFailure diagnostic; an empty result is not fatal by itself.
func Discover(cfg *config.Config, rootPath string) ([]SourceFile, diag.List) {
	var diags diag.List
	type accumulated struct {
		library string
		mode    config.Mode
		libSet  bool
	}
	acc := make(map[string]*accumulated)
	order := make([]string, 0)

	for _, inc := range cfg.WithEnvIncludes() {
		root := inc.Path
		if !filepath.IsAbs(root) {
			root = filepath.Join(rootPath, root)
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		if _, err := os.Stat(root); err != nil {
			diags = append(diags, diag.New(diag.IoFailure, root, 0, fmt.Sprintf("include root: %v", err)))
			continue
		}

		matches, err := expand(root, inc.Recursive, inc.Pattern)
		if err != nil {
			diags = append(diags, diag.New(diag.IoFailure, root, 0, fmt.Sprintf("expanding pattern: %v", err)))
			continue
		}

		for _, m := range matches {
			entry, seen := acc[m]
			if !seen {
				entry = &accumulated{library: inc.Library, mode: inc.Mode, libSet: true}
				acc[m] = entry
				order = append(order, m)
				continue
			}
			// Strongest mode wins; library is fixed to the first match —
			// a later, conflicting library assignment is a diagnostic.
			if inc.Mode.Stronger(entry.mode) {
				entry.mode = inc.Mode
			}
			if entry.libSet && !strings.EqualFold(entry.library, inc.Library) {
				diags = append(diags, diag.New(diag.InconsistentIndex, m, 0,
					fmt.Sprintf("conflicting library assignment: %q then %q", entry.library, inc.Library)))
			}
		}
	}

	sort.Strings(order)

	files := make([]SourceFile, 0, len(order))
	for _, path := range order {
		entry := acc[path]
		versions, ctx := parseTags(path)
		files = append(files, SourceFile{
			Path:     path,
			Library:  strings.ToLower(entry.library),
			Versions: versions,
			Context:  ctx,
			Mode:     entry.mode,
		})
	}

	return files, diags
}

// expand resolves one directive's root+pattern into a concrete file list.
// Recursive directives walk the tree; non-recursive directives only look at
// immediate files, both matched against pattern with doublestar so "**" in
// custom patterns works without a hand-rolled walker.
func expand(root string, recursive bool, pattern string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		ok, err := doublestar.Match(pattern, filepath.Base(root))
		if err != nil {
			return nil, err
		}
		if ok {
			return []string{root}, nil
		}
		return nil, nil
	}

	var out []string
	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			ok, mErr := doublestar.Match(pattern, filepath.Base(path))
			if mErr == nil && ok {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, mErr := doublestar.Match(pattern, e.Name())
		if mErr == nil && ok {
			out = append(out, filepath.Join(root, e.Name()))
		}
	}
	return out, nil
}

// parseTags splits the basename on "." and interprets every segment that is
// neither the first nor the last as a tag (spec.md §6 filename tag format).
func parseTags(path string) (map[int]bool, Context) {
	base := filepath.Base(path)
	segments := strings.Split(base, ".")

	versions := make(map[int]bool)
	ctx := Universal
	sawSim, sawSyn := false, false

	if len(segments) > 2 {
		for _, tag := range segments[1 : len(segments)-1] {
			lower := strings.ToLower(tag)
			if year, ok := versionTags[lower]; ok {
				versions[year] = true
				continue
			}
			switch lower {
			case "sim":
				sawSim = true
			case "syn":
				sawSyn = true
			}
			// any other tag is reserved and silently ignored
		}
	}

	if sawSim && !sawSyn {
		ctx = SimOnly
	} else if sawSyn && !sawSim {
		ctx = SynOnly
	}

	if len(versions) == 0 {
		return nil, ctx
	}
	return versions, ctx
}

// BaseUnitName returns the basename with tags and extension stripped, used
// by the style checker's S3 rule (filename matches primary unit name).
func BaseUnitName(path string) string {
	base := filepath.Base(path)
	segments := strings.Split(base, ".")
	if len(segments) == 0 {
		return base
	}
	return segments[0]
}
