package selection

import (
	"testing"

	"github.com/dyluth/spoor/internal/engine"
	"github.com/dyluth/spoor/pkg/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runModule(t *testing.T, events []replay.Event) (*replay.Context, *engine.Report) {
	t.Helper()
	roster := []replay.Participant{
		{PID: 1, Name: "Alice"},
		{PID: 2, Name: "Obs", Observer: true},
	}
	rc, err := replay.NewContext(roster, events, replay.MapInfo{})
	require.NoError(t, err)

	eng := engine.New(engine.NewContextLoader(100), NewModule(true))
	eng.SetQuiet(true)
	return rc, eng.Run(rc)
}

func TestModuleTracksSelectionsAndHotkeys(t *testing.T) {
	events := []replay.Event{
		{Kind: replay.KindUnitBorn, PID: 1, UnitID: 100, UnitType: "Drone", X: 5, Y: 6},
		{Kind: replay.KindUnitBorn, PID: 1, UnitID: 101, UnitType: "Drone"},
		{Kind: replay.KindSelection, PID: 1, Frame: 16, Slot: cur, UnitIDs: []int64{100, 101}},
		{Kind: replay.KindSetHotkey, PID: 1, Frame: 32, Slot: 1},
		{Kind: replay.KindSelection, PID: 1, Frame: 48, Slot: cur,
			Mask: replay.Mask{Type: replay.MaskBits, Bits: []bool{true}}},
		{Kind: replay.KindGetFromHotkey, PID: 1, Frame: 64, Slot: 1,
			Mask: replay.Mask{Type: replay.MaskOneIndices, Indices: []int{0}}},
		{Kind: replay.KindSelection, PID: 2, Frame: 64, Slot: cur, UnitIDs: []int64{100}},
	}

	rc, report := runModule(t, events)
	require.NoError(t, report.Err())

	h, ok := replay.Lookup(rc.Results, 1, HistoryKey)
	require.True(t, ok)

	drone100 := replay.Entity{ID: 100, Type: "Drone", X: 5, Y: 6}
	drone101 := replay.Entity{ID: 101, Type: "Drone"}

	assert.Equal(t, []replay.Entity{drone100, drone101}, h.At(16)[cur])
	assert.Equal(t, []replay.Entity{drone100, drone101}, h.At(40)[1])
	assert.Equal(t, []replay.Entity{drone100, drone101}, h.At(48)[cur], "short mask leaves selection unchanged")
	assert.Equal(t, []replay.Entity{drone101}, h.At(64)[cur])

	errs, ok := replay.Lookup(rc.Results, 1, ErrorsKey)
	require.True(t, ok)
	assert.Equal(t, 1, errs)

	// Observers are tracked too
	obs, ok := replay.Lookup(rc.Results, 2, HistoryKey)
	require.True(t, ok)
	assert.Equal(t, []replay.Entity{drone100}, obs.At(64)[cur])

	// Current selection is published per event
	sel, ok := rc.Results.Selected(2)
	require.True(t, ok)
	assert.Len(t, sel, 2)
	sel, ok = rc.Results.Selected(5)
	require.True(t, ok)
	assert.Equal(t, []replay.Entity{drone101}, sel)
	_, ok = rc.Results.Selected(0)
	assert.False(t, ok, "non-selection events publish nothing")
}

func TestModuleRejectsUnknownParticipant(t *testing.T) {
	events := []replay.Event{
		{Kind: replay.KindSelection, PID: 9, Slot: cur, UnitIDs: []int64{1}},
		{Kind: replay.KindSelection, PID: 1, Slot: cur, UnitIDs: []int64{1}},
	}

	rc, report := runModule(t, events)

	failures := report.FailuresFor("selection")
	require.Len(t, failures, 1)
	assert.Equal(t, 0, failures[0].Seq)
	assert.Contains(t, failures[0].Error(), "unknown participant 9")

	h, ok := replay.Lookup(rc.Results, 1, HistoryKey)
	require.True(t, ok)
	assert.Equal(t, units(1), h.Latest()[cur])
}
