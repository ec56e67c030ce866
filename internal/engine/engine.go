// Package engine wires discovery, lexing, style checking, indexing,
// resolution, and ordering into the single-shot pipeline spec.md §5
// describes: each stage runs to completion before the next starts, with
// only per-file parsing allowed to run on a worker pool. Grounded on the
// orchestration shape of internal/indexer/indexer.go's Indexer.Run — load
// config, scan files, parallel-extract, index, report — generalized from
// "lint findings" to "a compile order".
package engine

import (
	"fmt"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vhdeps/vhdeps-go/internal/config"
	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/discover"
	"github.com/vhdeps/vhdeps-go/internal/index"
	"github.com/vhdeps/vhdeps-go/internal/lex"
	"github.com/vhdeps/vhdeps-go/internal/order"
	"github.com/vhdeps/vhdeps-go/internal/resolve"
	"github.com/vhdeps/vhdeps-go/internal/style"
	"github.com/vhdeps/vhdeps-go/internal/trace"
	"github.com/vhdeps/vhdeps-go/internal/unit"
)

// Options controls one Run invocation. ParseWorkers bounds the per-file
// parsing pool (spec.md §5 "MAY be executed on a worker pool"); 0 picks a
// small, sane default.
type Options struct {
	RootPath     string
	Config       *config.Config
	Context      config.Context
	ParseWorkers int
	Trace        *trace.Recorder
}

// Outcome is everything a caller (CLI, tests, the impact report) needs.
type Outcome struct {
	Rows        []order.Row
	Diagnostics diag.List
	Files       []discover.SourceFile
	Parsed      map[string]lex.FileUnits
	Index       *index.Index
	Resolved    *resolve.Result
}

// prepared holds everything common to both Run and RunAll: discovery,
// parsing, style checking, and indexing, before the resolve stage forks
// into either a single merged graph or one graph per top.
type prepared struct {
	cfg         *config.Config
	tr          *trace.Recorder
	files       []discover.SourceFile
	parsed      map[string]lex.FileUnits
	filesByPath map[string]discover.SourceFile
	provided    map[string][]unit.ID
	ix          *index.Index
	ignoreLibs  map[string]bool
}

func prepare(opts Options) (prepared, diag.List) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(opts.RootPath)
		if err != nil {
			cfg = config.DefaultConfig()
		}
	}
	tr := opts.Trace
	if tr == nil {
		tr = trace.New("")
	}

	var diags diag.List
	p := prepared{cfg: cfg, tr: tr}

	stageStart := time.Now()
	files, discDiags := discover.Discover(cfg, opts.RootPath)
	tr.Stage("discover", "ok", stageStart, time.Since(stageStart))
	diags = append(diags, discDiags...)
	p.files = files
	if diags.HasFatal() {
		return p, diags
	}

	stageStart = time.Now()
	parsed, parseDiags := parseAll(files, opts.ParseWorkers, tr)
	diags = append(diags, parseDiags...)
	p.parsed = parsed
	tr.Stage("parse", "ok", stageStart, time.Since(stageStart))

	stageStart = time.Now()
	diags = append(diags, runStyleChecks(files, parsed, cfg.TreatStyleAsWarning)...)
	tr.Stage("style", "ok", stageStart, time.Since(stageStart))
	if diags.HasFatal() {
		return p, diags
	}

	filesByPath := make(map[string]discover.SourceFile, len(files))
	provided := make(map[string][]unit.ID, len(files))
	for _, f := range files {
		filesByPath[f.Path] = f
		fu, ok := parsed[f.Path]
		if !ok {
			continue
		}
		for _, u := range fu.Provided {
			provided[f.Path] = append(provided[f.Path], u.ID)
		}
	}
	p.filesByPath = filesByPath
	p.provided = provided

	stageStart = time.Now()
	p.ix = index.Build(files, provided)
	tr.Stage("index", "ok", stageStart, time.Since(stageStart))

	ignoreLibs := make(map[string]bool, len(cfg.IgnoreLibraries))
	for _, l := range cfg.IgnoreLibraries {
		ignoreLibs[l] = true
	}
	p.ignoreLibs = ignoreLibs

	return p, diags
}

// Run executes the full pipeline once, merging every matched top into a
// single resolution and compile order. A fatal diagnostic in any stage
// short-circuits the remaining stages but still returns every diagnostic
// collected so far (spec.md §7 propagation rules).
func Run(opts Options) (Outcome, diag.List) {
	p, diags := prepare(opts)
	var out Outcome
	out.Files = p.files
	out.Parsed = p.parsed
	out.Index = p.ix
	if diags.HasFatal() {
		return out, diags
	}

	stageStart := time.Now()
	resolved, resolveDiags := resolve.Resolve(p.ix, p.filesByPath, p.parsed, p.provided, p.cfg.Tops, opts.Context, p.cfg.DesiredVersion(), p.ignoreLibs)
	p.tr.Stage("resolve", "ok", stageStart, time.Since(stageStart))
	diags = append(diags, resolveDiags...)
	out.Resolved = resolved
	if diags.HasFatal() {
		return out, diags
	}

	stageStart = time.Now()
	rows, orderDiags := order.Linearize(resolved, p.parsed)
	p.tr.Stage("order", "ok", stageStart, time.Since(stageStart))
	diags = append(diags, orderDiags...)
	out.Rows = rows

	return out, diags
}

// TopOutcome is one independent compile order, keyed by its top file's path.
type TopOutcome struct {
	Path     string
	Rows     []order.Row
	Resolved *resolve.Result
}

// RunAll executes the pipeline through indexing once, then resolves and
// orders each matched top independently (spec.md §8 SC6: unrelated tops
// never share a compile order).
func RunAll(opts Options) ([]TopOutcome, Outcome, diag.List) {
	p, diags := prepare(opts)
	var out Outcome
	out.Files = p.files
	out.Parsed = p.parsed
	out.Index = p.ix
	if diags.HasFatal() {
		return nil, out, diags
	}

	stageStart := time.Now()
	results, resolveDiags := resolve.ResolveAll(p.ix, p.filesByPath, p.parsed, p.provided, p.cfg.Tops, opts.Context, p.cfg.DesiredVersion(), p.ignoreLibs)
	p.tr.Stage("resolve", "ok", stageStart, time.Since(stageStart))
	diags = append(diags, resolveDiags...)
	if diags.HasFatal() {
		return nil, out, diags
	}

	paths := make([]string, 0, len(results))
	for path := range results {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	tops := make([]TopOutcome, 0, len(paths))
	stageStart = time.Now()
	for _, path := range paths {
		res := results[path]
		rows, orderDiags := order.Linearize(res, p.parsed)
		diags = append(diags, orderDiags...)
		tops = append(tops, TopOutcome{Path: path, Rows: rows, Resolved: res})
	}
	p.tr.Stage("order", "ok", stageStart, time.Since(stageStart))

	return tops, out, diags
}

// parseAll lexes every discovered file, optionally fanning out across a
// bounded worker pool (spec.md §5), then merges results deterministically
// by sorting on path before anything downstream touches them.
func parseAll(files []discover.SourceFile, workers int, tr *trace.Recorder) (map[string]lex.FileUnits, diag.List) {
	if workers <= 0 {
		workers = 4
	}

	type outcome struct {
		path string
		fu   lex.FileUnits
		err  error
	}
	results := make([]outcome, len(files))

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			start := time.Now()
			content, err := os.ReadFile(f.Path)
			if err != nil {
				results[i] = outcome{path: f.Path, err: err}
				tr.File("parse", f.Path, "error", start, time.Since(start))
				return nil
			}
			results[i] = outcome{path: f.Path, fu: lex.Parse(f.Path, content, f.Library)}
			tr.File("parse", f.Path, "ok", start, time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

	parsed := make(map[string]lex.FileUnits, len(files))
	var diags diag.List
	for _, r := range results {
		if r.err != nil {
			diags = append(diags, diag.New(diag.IoFailure, r.path, 0, fmt.Sprintf("reading file: %v", r.err)))
			continue
		}
		parsed[r.path] = r.fu
		for _, a := range r.fu.Anomalies {
			diags = append(diags, diag.New(diag.ParseAnomaly, r.path, a.Line, a.Message))
		}
	}
	return parsed, diags
}

func runStyleChecks(files []discover.SourceFile, parsed map[string]lex.FileUnits, downgrade bool) diag.List {
	var diags diag.List
	for _, f := range files {
		if f.Mode != config.ModeStrict {
			continue
		}
		fu, ok := parsed[f.Path]
		if !ok {
			continue
		}
		found := style.Check(f.Path, discover.BaseUnitName(f.Path), fu)
		if downgrade {
			for i := range found {
				found[i].Severity = diag.Warning
			}
		}
		diags = append(diags, found...)
	}
	return diags
}

