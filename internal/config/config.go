// Package config loads the project-level configuration that expresses the
// inclusion-directive grammar of spec.md §6 as a declarative JSON document,
// the way vhdl_lint.json expresses library file globs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Mode is the inclusion mode of a directive; stronger modes win when a file
// is matched by more than one directive (blackbox > strict > normal).
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeStrict   Mode = "strict"
	ModeBlackBox Mode = "blackbox"
)

// rank orders modes so the strongest can be picked when directives overlap.
func (m Mode) rank() int {
	switch m {
	case ModeBlackBox:
		return 2
	case ModeStrict:
		return 1
	default:
		return 0
	}
}

// Stronger reports whether m should win over other when the same file is
// matched by directives carrying both.
func (m Mode) Stronger(other Mode) bool {
	return m.rank() > other.rank()
}

// Context selects which files are eligible: universal files plus whichever
// of simulation/synthesis is requested.
type Context string

const (
	ContextSimulation Context = "simulation"
	ContextSynthesis  Context = "synthesis"
)

// Include is one inclusion directive: a root path, recursion flag, filename
// pattern, target mode, and target library (spec.md §6).
type Include struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive,omitempty"`
	Mode      Mode   `json:"mode,omitempty"`
	Library   string `json:"library,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// Config is the top-level vhdeps project configuration.
type Config struct {
	// Standard is the desired VHDL version, e.g. "2008".
	Standard string `json:"standard,omitempty"`

	// RequireVersion is read from and written to the config file; discovery,
	// indexing and resolution do not apply it, so it sets no version floor.
	RequireVersion int `json:"requireVersion,omitempty"`

	// Context selects simulation or synthesis filtering; the vhdeps command
	// treats an empty value as synthesis.
	Context Context `json:"context,omitempty"`

	// Includes is the ordered list of inclusion directives.
	Includes []Include `json:"includes,omitempty"`

	// Tops is the list of glob patterns matched against provided entity
	// names to designate top units. Defaults to ["*_tc"].
	Tops []string `json:"tops,omitempty"`

	// IgnoreLibraries are extra libraries (beyond the built-in ieee/std)
	// whose use-clauses are satisfied by fiat, mirroring ignore pragmas
	// declared at the project level instead of per-file.
	IgnoreLibraries []string `json:"ignoreLibraries,omitempty"`

	// TreatStyleAsWarning downgrades strict-mode style violations (S1-S3)
	// from fatal to warning. The core default is to error (spec.md §4.6).
	TreatStyleAsWarning bool `json:"treatStyleAsWarning,omitempty"`
}

// DefaultConfig returns a sensible default configuration: scan the resolve
// root path recursively in normal mode, VHDL-2008, test-case tops.
func DefaultConfig() *Config {
	return &Config{
		Standard: "2008",
		Includes: []Include{
			{Path: ".", Recursive: true, Mode: ModeNormal, Library: "work", Pattern: "*.vhd*"},
		},
		Tops: []string{"*_tc"},
	}
}

// DesiredVersion parses Standard into the four-digit year the resolver
// requests; falls back to 2008 when unset or unparsable.
func (c *Config) DesiredVersion() int {
	v := parseVersion(c.Standard)
	if v == 0 {
		return 2008
	}
	return v
}

func parseVersion(s string) int {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0
	}
	return v
}

// Load finds and loads configuration using a fixed search order:
// ./vhdeps.json, ./.vhdeps.json, <rootPath>/vhdeps.json and
// <rootPath>/.vhdeps.json (if rootPath is a directory other than cwd),
// ~/.config/vhdeps/config.json. Returns DefaultConfig if none is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "vhdeps.json"),
		filepath.Join(cwd, ".vhdeps.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "vhdeps.json"),
				filepath.Join(rootPath, ".vhdeps.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "vhdeps", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Standard == "" {
		c.Standard = "2008"
	}
	if len(c.Includes) == 0 {
		c.Includes = []Include{
			{Path: ".", Recursive: true, Mode: ModeNormal, Library: "work", Pattern: "*.vhd*"},
		}
	}
	for i := range c.Includes {
		if c.Includes[i].Mode == "" {
			c.Includes[i].Mode = ModeNormal
		}
		if c.Includes[i].Library == "" {
			c.Includes[i].Library = "work"
		}
		if c.Includes[i].Pattern == "" {
			c.Includes[i].Pattern = "*.vhd*"
		}
	}
	if len(c.Tops) == 0 {
		c.Tops = []string{"*_tc"}
	}
}

// Save writes the configuration to a file as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// EnvIncludePaths reads the environment-supplied include path list
// (spec.md §4.1: "Environment-supplied include paths are appended to the
// directive list"), colon-separated like $PATH.
func EnvIncludePaths() []string {
	raw := os.Getenv("VHDEPS_INCLUDE")
	if raw == "" {
		return nil
	}
	return filepath.SplitList(raw)
}

// WithEnvIncludes returns a copy of Includes with any environment-supplied
// paths appended as normal-mode, recursive, work-library directives.
func (c *Config) WithEnvIncludes() []Include {
	out := append([]Include(nil), c.Includes...)
	for _, p := range EnvIncludePaths() {
		out = append(out, Include{Path: p, Recursive: true, Mode: ModeNormal, Library: "work", Pattern: "*.vhd*"})
	}
	return out
}
