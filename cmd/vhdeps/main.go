// =============================================================================
// vhdeps - VHDL dependency resolver
// =============================================================================
//
// THE PIPELINE:
//   1. Discovery expands inclusion directives into a tagged file set
//   2. The lexer extracts provided/required design units per file
//   3. The style checker enforces strict-mode file rules
//   4. The index maps (library, kind, name) to candidate providers
//   5. The resolver walks reverse reachability from the top set
//   6. The orderer linearizes the resolved DAG into a compile order
//   7. The output contract validates the result before it is printed
//
// WHEN INVESTIGATING A WRONG COMPILE ORDER:
//   Start at discovery, not the orderer — a mis-tagged file or wrong
//   library assignment upstream looks like an ordering bug downstream.
// =============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/vhdeps/vhdeps-go/internal/config"
	"github.com/vhdeps/vhdeps-go/internal/contract"
	"github.com/vhdeps/vhdeps-go/internal/diag"
	"github.com/vhdeps/vhdeps-go/internal/engine"
	"github.com/vhdeps/vhdeps-go/internal/order"
	"github.com/vhdeps/vhdeps-go/internal/trace"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit()
	case "-h", "--help", "help":
		printUsage()
	case "-c", "--config":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		runWithConfig(os.Args[2], os.Args[3])
	case "-m", "--multi-top":
		if len(os.Args) < 3 {
			printUsage()
			os.Exit(1)
		}
		runResolveAll(os.Args[2])
	case "graph":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		runGraph(os.Args[2], os.Args[3])
	default:
		runResolve(os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: vhdeps [command] [options] <path>

Commands:
  init              Create a vhdeps.json configuration file
  <path>            Resolve VHDL dependencies rooted at the given path
  graph <path> <file>
                    Resolve <path> and print what transitively depends
                    on <file> (layered by BFS distance)

Options:
  -c, --config      Specify config file: vhdeps -c config.json <path>
  -m, --multi-top   Resolve each matched top independently and print one
                    compile order per top, separated by a blank line
  -h, --help        Show this help message

Configuration:
  vhdeps looks for configuration in:
    1. ./vhdeps.json
    2. ./.vhdeps.json
    3. <path>/vhdeps.json
    4. <path>/.vhdeps.json
    5. ~/.config/vhdeps/config.json

  Run 'vhdeps init' to create a default configuration file.`)
}

func runInit() {
	configPath := "vhdeps.json"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Inclusion directives and their mode/library/pattern")
	fmt.Println("  - Top unit glob patterns")
	fmt.Println("  - The desired VHDL standard")
}

func runResolve(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	resolve(cfg, path)
}

func runResolveAll(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	ctx := config.ContextSynthesis
	if cfg.Context == config.ContextSimulation {
		ctx = config.ContextSimulation
	}

	tr := trace.New(trace.PathFromEnv(""))
	defer tr.Close()

	tops, _, diags := engine.RunAll(engine.Options{
		RootPath: path,
		Config:   cfg,
		Context:  ctx,
		Trace:    tr,
	})

	for _, w := range diag.List(diags).Warnings() {
		fmt.Fprintln(os.Stderr, w.String())
	}

	if diag.List(diags).HasFatal() {
		for _, f := range diag.List(diags).Fatal() {
			fmt.Fprintln(os.Stderr, f.String())
		}
		os.Exit(1)
	}

	for i, top := range tops {
		if i > 0 {
			fmt.Println()
		}
		if err := validateOutput(top.Rows, diags); err != nil {
			fmt.Fprintf(os.Stderr, "Error: output contract violated for %s: %v\n", top.Path, err)
			os.Exit(1)
		}
		printRows(top.Rows)
	}
}

// runGraph resolves path and prints the dependents-impact report for file:
// every file that would need re-resolving if file changed, layered by BFS
// distance (resolve.Result.ImpactOf).
func runGraph(path, file string) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	ctx := config.ContextSynthesis
	if cfg.Context == config.ContextSimulation {
		ctx = config.ContextSimulation
	}

	tr := trace.New(trace.PathFromEnv(""))
	defer tr.Close()

	outcome, diags := engine.Run(engine.Options{
		RootPath: path,
		Config:   cfg,
		Context:  ctx,
		Trace:    tr,
	})

	for _, w := range diag.List(diags).Warnings() {
		fmt.Fprintln(os.Stderr, w.String())
	}

	if diag.List(diags).HasFatal() {
		for _, f := range diag.List(diags).Fatal() {
			fmt.Fprintln(os.Stderr, f.String())
		}
		os.Exit(1)
	}

	if _, ok := outcome.Resolved.Selections[file]; !ok {
		fmt.Fprintf(os.Stderr, "Error: %s was not selected by this resolution\n", file)
		os.Exit(1)
	}

	fmt.Print(outcome.Resolved.ImpactOf(file).String())
}

func runWithConfig(configPath, resolvePath string) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", configPath, err)
		os.Exit(1)
	}
	resolve(cfg, resolvePath)
}

func resolve(cfg *config.Config, path string) {
	ctx := config.ContextSynthesis
	if cfg.Context == config.ContextSimulation {
		ctx = config.ContextSimulation
	}

	tr := trace.New(trace.PathFromEnv(""))
	defer tr.Close()

	outcome, diags := engine.Run(engine.Options{
		RootPath: path,
		Config:   cfg,
		Context:  ctx,
		Trace:    tr,
	})

	for _, w := range diag.List(diags).Warnings() {
		fmt.Fprintln(os.Stderr, w.String())
	}

	if diag.List(diags).HasFatal() {
		for _, f := range diag.List(diags).Fatal() {
			fmt.Fprintln(os.Stderr, f.String())
		}
		os.Exit(1)
	}

	if err := validateOutput(outcome.Rows, diags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: output contract violated: %v\n", err)
		os.Exit(1)
	}

	printRows(outcome.Rows)
}

func validateOutput(rows []order.Row, diags diag.List) error {
	v, err := contract.New()
	if err != nil {
		return err
	}
	return v.Validate(contract.FromResult(rows, diags))
}

func printRows(rows []order.Row) {
	for _, r := range rows {
		version := "----"
		if r.Version != 0 {
			version = fmt.Sprintf("%d", r.Version)
		}
		fmt.Printf("%s %s %s %s\n", r.Role, r.Library, version, r.Path)
	}
}
