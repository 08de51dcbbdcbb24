package selection

import "sort"

// History is the frame-indexed chain of SlotSet snapshots of one participant.
//
// Reads carry forward: a frame without a snapshot sees the nearest earlier one,
// and any frame before the first snapshot sees an empty SlotSet. Writes store a
// new snapshot at exactly one frame and never touch earlier snapshots.
type History struct {
	frames []int // ascending
	sets   []SlotSet
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// At returns the effective SlotSet at frame.
func (h *History) At(frame int) SlotSet {
	// index of the first snapshot after frame
	i := sort.SearchInts(h.frames, frame+1)
	if i == 0 {
		return SlotSet{}
	}
	return h.sets[i-1]
}

// Set stores s as the snapshot at frame, replacing only that frame's snapshot.
func (h *History) Set(frame int, s SlotSet) {
	i := sort.SearchInts(h.frames, frame)
	if i < len(h.frames) && h.frames[i] == frame {
		h.sets[i] = s
		return
	}
	h.frames = append(h.frames, 0)
	h.sets = append(h.sets, SlotSet{})
	copy(h.frames[i+1:], h.frames[i:])
	copy(h.sets[i+1:], h.sets[i:])
	h.frames[i] = frame
	h.sets[i] = s
}

// Frames returns the frames that hold an explicit snapshot, ascending.
func (h *History) Frames() []int {
	out := make([]int, len(h.frames))
	copy(out, h.frames)
	return out
}

// Len returns the number of explicit snapshots.
func (h *History) Len() int {
	return len(h.frames)
}

// Latest returns the last snapshot, or an empty SlotSet.
func (h *History) Latest() SlotSet {
	if len(h.sets) == 0 {
		return SlotSet{}
	}
	return h.sets[len(h.sets)-1]
}
