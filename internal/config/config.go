// Package config handles YAML workload-file parsing and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"workloadgen/internal/metrics"
)

// schemaVersion is the only value SchemaVersion may hold. There is
// exactly one schema in this system, so "checking" it is really just
// rejecting typos and copy-pasted files from some other tool.
const schemaVersion = "2018-07-01"

// defaultRandomSeed is used when a workload file omits RandomSeed.
// An arbitrary fixed constant, not time-seeded, so a workload file
// without an explicit seed is still reproducible run to run.
const defaultRandomSeed = int64(269849313357703264)

// ErrInvalidConfiguration is wrapped by every error LoadConfig returns
// for a structurally-valid-YAML-but-semantically-wrong workload file
// (bad schema version, duplicate phase numbers). Callers distinguish
// this from ordinary I/O/parse errors with errors.Is.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config is the root of a workload file.
type Config struct {
	SchemaVersion string             `yaml:"SchemaVersion"`
	RandomSeed    int64              `yaml:"RandomSeed"`
	Actors        []ActorConfig      `yaml:"Actors"`
	Thresholds    metrics.Thresholds `yaml:"Thresholds,omitempty"`

	// BaseDir is the directory the workload file was loaded from, used
	// to resolve relative DataSourceConfig.File paths. Set by LoadConfig,
	// not a YAML field.
	BaseDir string `yaml:"-"`
}

// DataSourceConfig is one `Data:` entry within an actor block: a named
// CSV or JSON file an actor draws rows from once per iteration, feeding
// its document/value generators.
type DataSourceConfig struct {
	Name string `yaml:"Name"`
	File string `yaml:"File"`
	Mode string `yaml:"Mode"`
}

// ActorConfig is one `Actors:` entry. Threads lets a single block
// produce more than one running actor, multiplying one actor
// definition by a `Threads:` count instead of repeating the block.
// Extra captures any producer-specific keys (e.g. `Collection:`)
// that aren't part of the common schema — PhaseConfig.Get falls back to
// these when a phase block doesn't override them, implementing
// `Phases:` key inheritance from the owning actor block.
type ActorConfig struct {
	Name    string                 `yaml:"Name"`
	Type    string                 `yaml:"Type"`
	Threads int                    `yaml:"Threads"`
	Phases  []PhaseConfig          `yaml:"Phases"`
	Data    []DataSourceConfig     `yaml:"Data"`
	Extra   map[string]interface{} `yaml:",inline"`
}

// PhaseConfig is one `Phases:` entry within an actor block. Phase,
// Repeat, and Duration are pointers so "absent" is distinguishable from
// "explicitly zero" — a phase with neither Repeat nor Duration set is
// "non-blocking: follow the phase", which is not the same thing as
// Repeat: 0.
type PhaseConfig struct {
	Phase    *int                   `yaml:"Phase"`
	Repeat   *uint32                `yaml:"Repeat"`
	Duration *time.Duration         `yaml:"Duration"`
	RPS      int                    `yaml:"RPS"`
	Extra    map[string]interface{} `yaml:",inline"`
}

// Get looks up key in this phase's own Extra block, falling back to
// the owning actor's Extra block if the phase doesn't override it —
// the `Phases:` key-inheritance rule.
func (p PhaseConfig) Get(actor ActorConfig, key string) (interface{}, bool) {
	if v, ok := p.Extra[key]; ok {
		return v, true
	}
	if v, ok := actor.Extra[key]; ok {
		return v, true
	}
	return nil, false
}

// LoadConfig reads and parses a workload YAML file, then validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing workload file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.RandomSeed == 0 {
		cfg.RandomSeed = defaultRandomSeed
	}
	cfg.BaseDir = filepath.Dir(path)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SchemaVersion != schemaVersion {
		return fmt.Errorf("%w: SchemaVersion must be %q, got %q",
			ErrInvalidConfiguration, schemaVersion, c.SchemaVersion)
	}
	for _, actor := range c.Actors {
		if actor.Name == "" {
			return fmt.Errorf("%w: actor missing Name", ErrInvalidConfiguration)
		}
		if actor.Type == "" {
			return fmt.Errorf("%w: actor %q missing Type", ErrInvalidConfiguration, actor.Name)
		}
		for _, ds := range actor.Data {
			if ds.Name == "" || ds.File == "" {
				return fmt.Errorf("%w: actor %q has a Data entry missing Name or File",
					ErrInvalidConfiguration, actor.Name)
			}
		}
		seen := make(map[int]bool, len(actor.Phases))
		for i, phase := range actor.Phases {
			num := i
			if phase.Phase != nil {
				num = *phase.Phase
			}
			if seen[num] {
				return fmt.Errorf("%w: actor %q declares phase %d more than once",
					ErrInvalidConfiguration, actor.Name, num)
			}
			seen[num] = true
		}
	}
	return nil
}
