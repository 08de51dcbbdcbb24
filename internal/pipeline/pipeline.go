// Package pipeline assembles the analysis modules named in a configuration
// and runs them over a replay context.
package pipeline

import (
	"github.com/dyluth/spoor/internal/activity"
	"github.com/dyluth/spoor/internal/config"
	"github.com/dyluth/spoor/internal/coverage"
	"github.com/dyluth/spoor/internal/engine"
	"github.com/dyluth/spoor/internal/selection"
	"github.com/dyluth/spoor/pkg/replay"
)

// Modules builds the engine modules for cfg. The context loader is always
// registered first so later modules can read the entity registry and the map
// transform.
func Modules(cfg *config.SpoorConfig) []engine.Module {
	modules := []engine.Module{engine.NewContextLoader(cfg.Coverage.GridHeight)}
	for _, name := range cfg.Modules {
		switch name {
		case config.ModuleSelection:
			modules = append(modules, selection.NewModule(cfg.Debug))
		case config.ModuleActivity:
			modules = append(modules, activity.NewModule())
		case config.ModuleCoverage:
			modules = append(modules, coverage.NewModule(CoverageOptions(cfg.Coverage)))
		}
	}
	return modules
}

// CoverageOptions converts the coverage section of the configuration.
func CoverageOptions(cc *config.CoverageConfig) coverage.Options {
	return coverage.Options{
		Radii:          cc.Radii,
		BornTypes:      cc.BornTypes,
		InitTypes:      cc.InitTypes,
		StartAbilities: cc.StartAbilities,
		StopAbilities:  cc.StopAbilities,
		Translation:    coverage.Translation(cc.Translation),
	}
}

// Analyze runs a fresh set of modules over rc. The context's result table
// carries the attachments afterwards.
func Analyze(rc *replay.Context, cfg *config.SpoorConfig) *engine.Report {
	return engine.New(Modules(cfg)...).Run(rc)
}
