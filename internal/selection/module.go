package selection

import (
	"fmt"
	"log"

	"github.com/dyluth/spoor/internal/timespec"
	"github.com/dyluth/spoor/pkg/replay"
)

var (
	// HistoryKey holds each participant's *History.
	HistoryKey = replay.NewKey[*History]("selection.history")

	// ErrorsKey holds each participant's count of failed deselections.
	ErrorsKey = replay.NewKey[int]("selection.errors")
)

// Module tracks selections for every person in the replay, observers included.
type Module struct {
	debug    bool
	trackers map[int]*Tracker
}

// NewModule creates the selection module. With debug set every selection
// change is logged.
func NewModule(debug bool) *Module {
	return &Module{debug: debug}
}

// Name identifies the module in run reports.
func (m *Module) Name() string { return "selection" }

// Start gives every participant, observers included, an empty tracker.
func (m *Module) Start(rc *replay.Context) error {
	m.trackers = make(map[int]*Tracker)
	for _, p := range rc.People() {
		t := NewTracker()
		m.trackers[p.PID] = t
		replay.Attach(rc.Results, p.PID, HistoryKey, t.History())
	}
	return nil
}

// Kinds returns the selection and control group events.
func (m *Module) Kinds() []replay.Kind {
	return []replay.Kind{
		replay.KindSelection,
		replay.KindSetHotkey,
		replay.KindAddToHotkey,
		replay.KindGetFromHotkey,
	}
}

// Handle applies the event to its participant's tracker and publishes the
// resulting current selection under the event's sequence number.
func (m *Module) Handle(rc *replay.Context, ev replay.Event) error {
	t, ok := m.trackers[ev.PID]
	if !ok {
		return fmt.Errorf("selection event for unknown participant %d", ev.PID)
	}

	ok = true
	switch ev.Kind {
	case replay.KindSelection:
		_, ok = t.Deselect(ev.Frame, ev.Slot, ev.Mask)
		t.Select(ev.Frame, ev.Slot, rc.Entities.ResolveAll(ev.UnitIDs))
		m.debugf(rc, ev, "selected %d units", len(t.History().At(ev.Frame)[replay.CurrentSelection]))

	case replay.KindSetHotkey:
		t.SetHotkey(ev.Frame, ev.Slot)
		m.debugf(rc, ev, "set hotkey %d to current selection", ev.Slot)

	case replay.KindAddToHotkey:
		ok = t.AddToHotkey(ev.Frame, ev.Slot, ev.Mask)
		m.debugf(rc, ev, "added current selection to hotkey %d", ev.Slot)

	case replay.KindGetFromHotkey:
		ok = t.GetFromHotkey(ev.Frame, ev.Slot, ev.Mask)
		m.debugf(rc, ev, "retrieved hotkey %d, %d units", ev.Slot, len(t.History().At(ev.Frame)[replay.CurrentSelection]))
	}

	rc.Results.PublishSelected(ev.Seq, t.History().At(ev.Frame).Current())

	if !ok && m.debug {
		log.Printf("[Selection] Error detected in deselection mode %s (event %d, pid %d)", ev.Mask.Type, ev.Seq, ev.PID)
	}
	return nil
}

// End attaches the final error counts.
func (m *Module) End(rc *replay.Context) error {
	for pid, t := range m.trackers {
		replay.Attach(rc.Results, pid, ErrorsKey, t.Errors())
	}
	return nil
}

func (m *Module) debugf(rc *replay.Context, ev replay.Event, format string, args ...any) {
	if !m.debug {
		return
	}
	name := fmt.Sprintf("pid %d", ev.PID)
	if p, ok := rc.Participant(ev.PID); ok && p.Name != "" {
		name = p.Name
	}
	log.Printf("[Selection] [%s] %s %s", timespec.Format(ev.Second), name, fmt.Sprintf(format, args...))
}
