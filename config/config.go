// Package config loads and validates analyzer configurations.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Working set orders accepted by Config.WorkingSet.
const (
	WorkingSetFIFO     = "fifo"
	WorkingSetLIFO     = "lifo"
	WorkingSetPriority = "priority"
)

// Context sensitivity modes accepted by Config.ContextSensitivity.
const (
	// ContextInsensitive shares one summary per procedure across all of
	// its call sites.
	ContextInsensitive = "insensitive"
	// ContextCallStack keys summaries by the calling procedures on the
	// stack, up to ContextDepth callers.
	ContextCallStack = "call-stack"
)

// Open call policies accepted by Config.OpenCallPolicy.
const (
	// OpenCallFail aborts the analysis when a call cannot be resolved to
	// any known procedure.
	OpenCallFail = "fail"
	// OpenCallTop treats unresolvable calls as returning a completely
	// unknown value of the declared type, leaving the rest of the state
	// intact.
	OpenCallTop = "top"
	// OpenCallHavoc additionally discards all knowledge about the
	// arguments passed to the unresolvable call.
	OpenCallHavoc = "havoc"
)

// Config collects all user-tunable knobs of an analysis run.
// Fields not present in the yaml file keep their zero value; Validate
// fills in defaults afterwards.
type Config struct {
	sourceFile string

	// LogLevel grades logger verbosity, see LogLevel constants.
	LogLevel int `yaml:"log-level"`

	// WideningThreshold is the number of exact joins a statement is
	// granted before the solver switches to widening. Defaults to 1.
	WideningThreshold int `yaml:"widening-threshold"`

	// WorkingSet picks the iteration order of the intraprocedural
	// solver: "fifo", "lifo" or "priority" (reverse postorder).
	// Defaults to "priority".
	WorkingSet string `yaml:"working-set"`

	// OpenCallPolicy decides what happens when a call resolves to no
	// known procedure: "fail", "top" or "havoc". Defaults to "fail".
	OpenCallPolicy string `yaml:"open-call-policy"`

	// ContextSensitivity picks the summary cache keying: "insensitive"
	// or "call-stack". Defaults to "insensitive".
	ContextSensitivity string `yaml:"context-sensitivity"`

	// ContextDepth bounds the number of callers recorded in a call-stack
	// context token. Defaults to 1; ignored for insensitive analyses.
	ContextDepth int `yaml:"context-depth"`

	// DisableVirtualDispatch makes instance calls with more than one
	// dispatchable target a resolution error instead of a multi-target
	// call.
	DisableVirtualDispatch bool `yaml:"disable-virtual-dispatch"`

	// ModularWorstCase analyzes every procedure as if called from an
	// unknown context, treating every call it contains as open.
	ModularWorstCase bool `yaml:"modular-worst-case"`

	// Parallelism bounds the number of procedures analyzed concurrently
	// by the driver. Values below 1 mean sequential analysis.
	Parallelism int `yaml:"parallelism"`

	// DumpCFG writes a graphviz rendering of every analyzed procedure
	// into ReportsDir.
	DumpCFG bool `yaml:"dump-cfg"`

	// ReportsDir is the directory receiving dumps and reports.
	ReportsDir string `yaml:"reports-dir"`

	// CFGImageFormat additionally renders each dumped procedure graph
	// through graphviz in the given format ("svg", "png" or "jpg").
	// Empty means dot files only.
	CFGImageFormat string `yaml:"cfg-image-format"`

	// Colorize enables ANSI colors in rendered states and reports.
	Colorize bool `yaml:"colorize"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.WideningThreshold <= 0 {
		c.WideningThreshold = 1
	}
	if c.WorkingSet == "" {
		c.WorkingSet = WorkingSetPriority
	}
	if c.OpenCallPolicy == "" {
		c.OpenCallPolicy = OpenCallFail
	}
	if c.ContextSensitivity == "" {
		c.ContextSensitivity = ContextInsensitive
	}
	if c.ContextDepth <= 0 {
		c.ContextDepth = 1
	}
	if c.LogLevel == 0 {
		c.LogLevel = int(InfoLevel)
	}
}

// Load reads a yaml configuration from the given file.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	c := &Config{sourceFile: filename}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", filename, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SourceFile returns the file the config was loaded from, if any.
func (c *Config) SourceFile() string { return c.sourceFile }

// Validate rejects option values the analyzer does not understand.
func (c *Config) Validate() error {
	switch c.WorkingSet {
	case WorkingSetFIFO, WorkingSetLIFO, WorkingSetPriority:
	default:
		return fmt.Errorf("unknown working-set %q", c.WorkingSet)
	}
	switch c.OpenCallPolicy {
	case OpenCallFail, OpenCallTop, OpenCallHavoc:
	default:
		return fmt.Errorf("unknown open-call-policy %q", c.OpenCallPolicy)
	}
	switch c.ContextSensitivity {
	case ContextInsensitive, ContextCallStack:
	default:
		return fmt.Errorf("unknown context-sensitivity %q", c.ContextSensitivity)
	}
	if c.ModularWorstCase && c.OpenCallPolicy == OpenCallFail {
		return fmt.Errorf("modular-worst-case requires open-call-policy %q or %q", OpenCallTop, OpenCallHavoc)
	}
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level must be between %d and %d", ErrLevel, TraceLevel)
	}
	switch c.CFGImageFormat {
	case "", "svg", "png", "jpg":
	default:
		return fmt.Errorf("unknown cfg-image-format %q", c.CFGImageFormat)
	}
	return nil
}
