package coverage

import "sort"

// Generator is one active coverage-generating unit.
type Generator struct {
	UnitID int64
	X, Y   float64
	Type   string // Unit type, or ability name for ability-started generation
	Since  int    // Elapsed second it became active
}

// Entry is the complete active set right after one state change.
type Entry struct {
	Second     int
	Generators []Generator
}

// Minute returns the elapsed-minute bucket of the entry.
func (e Entry) Minute() int {
	return e.Second / 60
}

// Timeline is the ordered list of full snapshots of a player's active set.
// Entries are never modified once appended.
type Timeline struct {
	entries []Entry
}

// Add appends previous active set plus g, stamped at second.
func (t *Timeline) Add(second int, g Generator) {
	prev := t.Latest()
	next := make([]Generator, 0, len(prev)+1)
	next = append(next, prev...)
	next = append(next, g)
	t.entries = append(t.entries, Entry{Second: second, Generators: next})
}

// Remove appends the latest active set without the first generator with
// unitID, stamped at second. Returns false, appending nothing, when unitID is
// not in the latest set.
func (t *Timeline) Remove(second int, unitID int64) bool {
	prev := t.Latest()
	for i, g := range prev {
		if g.UnitID != unitID {
			continue
		}
		next := make([]Generator, 0, len(prev)-1)
		next = append(next, prev[:i]...)
		next = append(next, prev[i+1:]...)
		t.entries = append(t.entries, Entry{Second: second, Generators: next})
		return true
	}
	return false
}

// Latest returns the current active set, or nil before the first change.
func (t *Timeline) Latest() []Generator {
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[len(t.entries)-1].Generators
}

// Entries returns all snapshots in order.
func (t *Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of snapshots.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// ReduceByMinute keeps one entry per minute that saw a state change: the last
// entry of that minute, which is the active set carried to the end of it.
// The result is ordered by minute.
func (t *Timeline) ReduceByMinute() []Entry {
	var out []Entry
	pos := make(map[int]int)
	for _, e := range t.entries {
		if i, ok := pos[e.Minute()]; ok {
			out[i] = e
			continue
		}
		pos[e.Minute()] = len(out)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minute() < out[j].Minute() })
	return out
}
