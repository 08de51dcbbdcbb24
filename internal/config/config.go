package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/spoor/pkg/archive"
)

// Module names accepted in the modules list.
const (
	ModuleSelection = "selection"
	ModuleActivity  = "activity"
	ModuleCoverage  = "coverage"
)

// DefaultModules is the analysis run when no modules list is given, in registration order.
var DefaultModules = []string{ModuleSelection, ModuleActivity, ModuleCoverage}

// SpoorConfig represents the top-level spoor.yml configuration
type SpoorConfig struct {
	Version  string          `yaml:"version"`
	Debug    bool            `yaml:"debug,omitempty"`    // Log every selection change
	Modules  []string        `yaml:"modules,omitempty"`  // Analysis modules to run, in order
	Coverage *CoverageConfig `yaml:"coverage,omitempty"` // Coverage aggregator tuning
	Store    *StoreConfig    `yaml:"store,omitempty"`    // Optional Redis archive
	Decoder  *DecoderConfig  `yaml:"decoder,omitempty"`  // Replay file decoding
}

// CoverageConfig fixes the numeric constants of the coverage aggregator
type CoverageConfig struct {
	GridHeight     int            `yaml:"grid_height,omitempty"` // Grid rows; width follows the map aspect (default: 100)
	Translation    string         `yaml:"translation,omitempty"` // "add" or "subtract" (default: add)
	Radii          map[string]int `yaml:"radii,omitempty"`       // Generator type -> radius in grid cells
	BornTypes      []string       `yaml:"born_types,omitempty"`
	InitTypes      []string       `yaml:"init_types,omitempty"`
	StartAbilities []string       `yaml:"start_abilities,omitempty"`
	StopAbilities  []string       `yaml:"stop_abilities,omitempty"`
}

// StoreConfig specifies where analysis summaries are archived
type StoreConfig struct {
	RedisURL string `yaml:"redis_url,omitempty"`
	Instance string `yaml:"instance,omitempty"` // Key namespace (default: "default")
}

// DecoderConfig tunes how .SC2Replay files are turned into events
type DecoderConfig struct {
	AbilityNames map[string]string `yaml:"ability_names,omitempty"` // "abilLink/cmdIndex" -> ability name
}

// Default returns a validated configuration with every default applied.
func Default() *SpoorConfig {
	c := &SpoorConfig{Version: "1.0"}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return c
}

// Validate performs strict validation on the configuration and applies defaults
func (c *SpoorConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if len(c.Modules) == 0 {
		c.Modules = append([]string(nil), DefaultModules...)
	}
	seen := make(map[string]bool)
	for _, name := range c.Modules {
		switch name {
		case ModuleSelection, ModuleActivity, ModuleCoverage:
		default:
			return fmt.Errorf("unknown module '%s' (valid: 'selection', 'activity', 'coverage')", name)
		}
		if seen[name] {
			return fmt.Errorf("module '%s' listed more than once", name)
		}
		seen[name] = true
	}

	if c.Coverage == nil {
		c.Coverage = &CoverageConfig{}
	}
	if err := c.Coverage.Validate(); err != nil {
		return err
	}

	if c.Decoder == nil {
		c.Decoder = &DecoderConfig{}
	}
	for key, name := range c.Decoder.AbilityNames {
		if name == "" {
			return fmt.Errorf("decoder.ability_names.%s must not be empty", key)
		}
	}

	if c.Store != nil {
		if c.Store.Instance == "" {
			c.Store.Instance = "default"
		}
		if err := archive.ValidateInstanceName(c.Store.Instance); err != nil {
			return fmt.Errorf("store.instance: %w", err)
		}
	}

	return nil
}

// Validate applies coverage defaults and checks that every generator type has a radius
func (cc *CoverageConfig) Validate() error {
	if cc.GridHeight == 0 {
		cc.GridHeight = 100
	}
	if cc.GridHeight < 1 {
		return fmt.Errorf("coverage.grid_height must be >= 1, got %d", cc.GridHeight)
	}

	if cc.Translation == "" {
		cc.Translation = "add"
	}
	if cc.Translation != "add" && cc.Translation != "subtract" {
		return fmt.Errorf("invalid coverage.translation: %s (must be 'add' or 'subtract')", cc.Translation)
	}

	if len(cc.Radii) == 0 {
		cc.Radii = map[string]int{
			"CreepTumor":    10,
			"Hatchery":      10,
			"GenerateCreep": 6,
			"NydusCanal":    4,
		}
	}
	if cc.BornTypes == nil {
		cc.BornTypes = []string{"Hatchery"}
	}
	if cc.InitTypes == nil {
		cc.InitTypes = []string{"CreepTumor", "Hatchery", "NydusCanal"}
	}
	if cc.StartAbilities == nil {
		cc.StartAbilities = []string{"GenerateCreep"}
	}
	if cc.StopAbilities == nil {
		cc.StopAbilities = []string{"StopGenerateCreep"}
	}

	types := make([]string, 0, len(cc.Radii))
	for name := range cc.Radii {
		types = append(types, name)
	}
	sort.Strings(types)
	for _, name := range types {
		if cc.Radii[name] < 0 {
			return fmt.Errorf("coverage.radii.%s must be >= 0, got %d", name, cc.Radii[name])
		}
	}

	for _, list := range [][]string{cc.BornTypes, cc.InitTypes, cc.StartAbilities} {
		for _, name := range list {
			if _, ok := cc.Radii[name]; !ok {
				return fmt.Errorf("coverage generator '%s' has no radius in coverage.radii", name)
			}
		}
	}

	return nil
}

// Enabled reports whether the named module is in the modules list.
func (c *SpoorConfig) Enabled(name string) bool {
	for _, m := range c.Modules {
		if m == name {
			return true
		}
	}
	return false
}

// Load reads and validates spoor.yml from the specified path
func Load(path string) (*SpoorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config SpoorConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
