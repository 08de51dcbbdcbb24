package coverage

import (
	"errors"
	"fmt"
	"log"

	"github.com/dyluth/spoor/internal/engine"
	"github.com/dyluth/spoor/pkg/replay"
)

var (
	// ByMinuteKey holds each player's coverage percentage per elapsed minute.
	ByMinuteKey = replay.NewKey[map[int]float64]("coverage.by_minute")

	// MaxKey holds each player's highest per-minute coverage percentage.
	MaxKey = replay.NewKey[float64]("coverage.max")

	// TimelineKey holds each player's full generator timeline.
	TimelineKey = replay.NewKey[*Timeline]("coverage.timeline")

	// UnmatchedRemovalsKey is the context-level count of stop-generation
	// abilities whose unit was not in any player's active set. Ordinary deaths
	// of non-generator units are not counted.
	UnmatchedRemovalsKey = replay.NewKey[int]("coverage.unmatched_removals")
)

// Options configures which events start and stop generators and how far each reaches.
type Options struct {
	Radii          map[string]int // Generator type (unit type or ability name) -> radius in grid cells
	BornTypes      []string       // Unit types that generate from UnitBorn
	InitTypes      []string       // Unit types that generate from UnitInit
	StartAbilities []string       // Abilities that start generation at the event location
	StopAbilities  []string       // Abilities that stop generation for the casting unit
	Translation    Translation
}

// Module reconstructs each player's coverage timeline and measures it per minute.
type Module struct {
	opts      Options
	born      map[string]bool
	init      map[string]bool
	start     map[string]bool
	stop      map[string]bool
	templates *Templates

	grid      *Grid
	players   []int
	timelines map[int]*Timeline
	unmatched int
}

// NewModule creates the coverage module.
func NewModule(opts Options) *Module {
	return &Module{
		opts:      opts,
		born:      toSet(opts.BornTypes),
		init:      toSet(opts.InitTypes),
		start:     toSet(opts.StartAbilities),
		stop:      toSet(opts.StopAbilities),
		templates: NewTemplates(),
	}
}

// Name identifies the module in run reports.
func (m *Module) Name() string { return "coverage" }

// Start requires fine-grained unit events and the map transform published by
// the context loader.
func (m *Module) Start(rc *replay.Context) error {
	if !rc.HasTrackerEvents {
		log.Printf("[Coverage] Replay %q does not have tracker events", rc.Name)
		return fmt.Errorf("replay has no tracker events: %w", engine.ErrMissingInput)
	}
	t, ok := replay.Shared(rc.Results, engine.TransformKey)
	if !ok {
		return fmt.Errorf("map transform not available: %w", engine.ErrMissingInput)
	}

	for _, r := range m.opts.Radii {
		m.templates.Precompute(r)
	}
	m.grid = NewGrid(t, m.templates, m.opts.Radii, m.opts.Translation)

	m.players = nil
	m.timelines = make(map[int]*Timeline)
	m.unmatched = 0
	for _, p := range rc.Players() {
		m.players = append(m.players, p.PID)
		m.timelines[p.PID] = &Timeline{}
	}
	return nil
}

// Kinds returns the events that start or stop generators.
func (m *Module) Kinds() []replay.Kind {
	return []replay.Kind{
		replay.KindUnitBorn,
		replay.KindUnitInit,
		replay.KindUnitDied,
		replay.KindAbility,
	}
}

// Handle starts or stops a generator according to the configured types and abilities.
func (m *Module) Handle(rc *replay.Context, ev replay.Event) error {
	switch ev.Kind {
	case replay.KindUnitBorn:
		if m.born[ev.UnitType] {
			m.add(ev, ev.UnitType)
		}
	case replay.KindUnitInit:
		if m.init[ev.UnitType] {
			m.add(ev, ev.UnitType)
		}
	case replay.KindAbility:
		switch {
		case m.start[ev.Ability]:
			m.add(ev, ev.Ability)
		case m.stop[ev.Ability]:
			if !m.remove(ev) {
				m.unmatched++
			}
		}
	case replay.KindUnitDied:
		m.remove(ev)
	}
	return nil
}

// add starts a generator for the event's owner. Units owned by anyone outside
// the player roster (neutral units) are not attributed.
func (m *Module) add(ev replay.Event, genType string) {
	tl, ok := m.timelines[ev.PID]
	if !ok {
		return
	}
	tl.Add(ev.Second, Generator{UnitID: ev.UnitID, X: ev.X, Y: ev.Y, Type: genType, Since: ev.Second})
}

// remove stops the generator for the event's unit in the first player whose
// latest active set contains it. Returns false when no player had it.
func (m *Module) remove(ev replay.Event) bool {
	for _, pid := range m.players {
		if m.timelines[pid].Remove(ev.Second, ev.UnitID) {
			return true
		}
	}
	return false
}

// End measures every player's minute-reduced timeline.
func (m *Module) End(rc *replay.Context) error {
	var errs []error
	for _, pid := range m.players {
		tl := m.timelines[pid]
		byMinute := make(map[int]float64)
		maxPercent := 0.0
		for _, entry := range tl.ReduceByMinute() {
			pct, err := m.grid.Percent(entry.Generators)
			if err != nil {
				errs = append(errs, fmt.Errorf("player %d minute %d: %w", pid, entry.Minute(), err))
				continue
			}
			byMinute[entry.Minute()] = pct
			if pct > maxPercent {
				maxPercent = pct
			}
		}
		replay.Attach(rc.Results, pid, TimelineKey, tl)
		replay.Attach(rc.Results, pid, ByMinuteKey, byMinute)
		replay.Attach(rc.Results, pid, MaxKey, maxPercent)
	}
	replay.Share(rc.Results, UnmatchedRemovalsKey, m.unmatched)
	return errors.Join(errs...)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
