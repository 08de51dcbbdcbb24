package engine

import (
	"log"

	"github.com/dyluth/spoor/internal/transform"
	"github.com/dyluth/spoor/pkg/replay"
)

// TransformKey is the context-level key under which the loader publishes the
// map's coordinate transform.
var TransformKey = replay.NewKey[*transform.Transform]("map.transform")

// ContextLoader keeps the entity registry current and publishes map geometry.
// Register it before every other module.
type ContextLoader struct {
	gridHeight int
}

// NewContextLoader creates a loader that builds a transform with the given grid height.
func NewContextLoader(gridHeight int) *ContextLoader {
	return &ContextLoader{gridHeight: gridHeight}
}

// Name identifies the loader in run reports.
func (l *ContextLoader) Name() string { return "context" }

// Start publishes the coordinate transform. Missing geometry is not an error
// here: modules that need the transform check for it themselves.
func (l *ContextLoader) Start(rc *replay.Context) error {
	camera, ok := rc.Map.PlayableCamera()
	if !ok {
		log.Printf("[Context] Replay %q has no map geometry, transform not published", rc.Name)
		return nil
	}
	t, err := transform.New(camera, rc.Map.ImageWidth, rc.Map.ImageHeight, l.gridHeight)
	if err != nil {
		return err
	}
	replay.Share(rc.Results, TransformKey, t)
	return nil
}

// Kinds returns the unit lifecycle events that move or create entities.
func (l *ContextLoader) Kinds() []replay.Kind {
	return []replay.Kind{
		replay.KindUnitBorn,
		replay.KindUnitInit,
		replay.KindUnitDone,
		replay.KindUnitDied,
	}
}

// Handle records the type and last position of the unit the event is about.
// Completion events carry no position, so they keep the one seen at init.
func (l *ContextLoader) Handle(rc *replay.Context, ev replay.Event) error {
	if ev.Kind == replay.KindUnitDone {
		rc.Entities.Touch(ev.UnitID, ev.UnitType)
		return nil
	}
	rc.Entities.Observe(ev.UnitID, ev.UnitType, ev.X, ev.Y)
	return nil
}
