package selection

import (
	"github.com/dyluth/spoor/pkg/replay"
)

// Tracker applies selection operations for one participant.
// Every operation reads the effective SlotSet at the given frame and stores
// the result as that frame's snapshot.
type Tracker struct {
	history *History
	errors  int
}

// NewTracker creates a tracker with an empty history.
func NewTracker() *Tracker {
	return &Tracker{history: NewHistory()}
}

// History returns the snapshot chain built so far.
func (t *Tracker) History() *History {
	return t.history
}

// Errors returns the number of failed deselections.
func (t *Tracker) Errors() int {
	return t.errors
}

// Select appends entities to slot, skipping those already in it.
// Returns the resulting slot contents.
func (t *Tracker) Select(frame, slot int, entities []replay.Entity) []replay.Entity {
	set := t.history.At(frame)
	next := appendUnique(set[slot], entities)
	t.history.Set(frame, set.with(slot, next))
	return next
}

// Deselect removes entities from slot according to mask and returns the survivors.
// When the mask does not fit the slot, ok is false, the error counter is
// incremented and the slot is left unchanged.
func (t *Tracker) Deselect(frame, slot int, mask replay.Mask) (survivors []replay.Entity, ok bool) {
	set := t.history.At(frame)
	survivors, err := applyMask(set[slot], mask)
	if err != nil {
		t.errors++
		return survivors, false
	}
	t.history.Set(frame, set.with(slot, survivors))
	return survivors, true
}

// SetHotkey copies the current selection into slot.
func (t *Tracker) SetHotkey(frame, slot int) {
	set := t.history.At(frame)
	t.history.Set(frame, set.with(slot, set[replay.CurrentSelection]))
}

// AddToHotkey deselects from slot with mask, then appends the current selection.
// Returns false when the mask failed; the append still happens.
func (t *Tracker) AddToHotkey(frame, slot int, mask replay.Mask) bool {
	_, ok := t.Deselect(frame, slot, mask)
	set := t.history.At(frame)
	next := appendUnique(set[slot], set[replay.CurrentSelection])
	t.history.Set(frame, set.with(slot, next))
	return ok
}

// GetFromHotkey deselects from slot with mask and makes the result the new
// current selection, replacing it entirely.
// Returns false when the mask failed.
func (t *Tracker) GetFromHotkey(frame, slot int, mask replay.Mask) bool {
	set := t.history.At(frame)
	survivors, err := applyMask(set[slot], mask)
	ok := err == nil
	if !ok {
		t.errors++
	}
	t.history.Set(frame, set.with(replay.CurrentSelection, survivors))
	return ok
}
