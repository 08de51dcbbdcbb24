// Package selection reconstructs each participant's unit selection and control
// groups frame by frame from selection and hotkey events.
package selection

import (
	"errors"
	"fmt"

	"github.com/dyluth/spoor/pkg/replay"
)

// ErrMaskDecode is returned when a deselection mask does not fit the slot it is applied to.
var ErrMaskDecode = errors.New("mask does not match selection")

// SlotSet is the full selection state of one participant: control groups 0-9
// and the current selection at replay.CurrentSelection.
//
// A SlotSet is a value. The slices it holds are never modified after being
// stored, so copying a SlotSet is a complete and safe snapshot.
type SlotSet [replay.SlotCount][]replay.Entity

// Slot returns a copy of the entities in slot i.
func (s SlotSet) Slot(i int) []replay.Entity {
	out := make([]replay.Entity, len(s[i]))
	copy(out, s[i])
	return out
}

// Current returns a copy of the current selection.
func (s SlotSet) Current() []replay.Entity {
	return s.Slot(replay.CurrentSelection)
}

// with returns a new SlotSet where slot i holds entities.
func (s SlotSet) with(i int, entities []replay.Entity) SlotSet {
	s[i] = entities
	return s
}

// appendUnique returns current followed by the entities of added not already
// present, in order. The result never aliases current.
func appendUnique(current, added []replay.Entity) []replay.Entity {
	out := make([]replay.Entity, 0, len(current)+len(added))
	seen := make(map[int64]bool, len(current)+len(added))
	for _, e := range current {
		out = append(out, e)
		seen[e.ID] = true
	}
	for _, e := range added {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// applyMask returns the entities of current that survive mask.
// On error the returned slice is current, unchanged.
func applyMask(current []replay.Entity, mask replay.Mask) ([]replay.Entity, error) {
	n := len(current)

	switch mask.Type {
	case "", replay.MaskNone:
		return current, nil

	case replay.MaskBits:
		if len(mask.Bits) < n {
			return current, fmt.Errorf("%w: %d mask bits for %d selected", ErrMaskDecode, len(mask.Bits), n)
		}
		out := make([]replay.Entity, 0, n)
		for i, e := range current {
			if !mask.Bits[i] {
				out = append(out, e)
			}
		}
		return out, nil

	case replay.MaskOneIndices, replay.MaskZeroIndices:
		listed := make([]bool, n)
		for _, idx := range mask.Indices {
			if idx < 0 || idx >= n {
				return current, fmt.Errorf("%w: index %d for %d selected", ErrMaskDecode, idx, n)
			}
			listed[idx] = true
		}
		keepListed := mask.Type == replay.MaskZeroIndices
		out := make([]replay.Entity, 0, n)
		for i, e := range current {
			if listed[i] == keepListed {
				out = append(out, e)
			}
		}
		return out, nil

	default:
		return current, fmt.Errorf("%w: unknown mask type %q", ErrMaskDecode, string(mask.Type))
	}
}
