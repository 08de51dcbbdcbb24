package replay

import "sort"

// Key names one typed result field. Declare keys once per module:
//
//	var avgKey = replay.NewKey[float64]("activity.avg_apm")
type Key[T any] struct {
	name string
}

// NewKey creates a key. Names must be unique across modules.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the field name of the key.
func (k Key[T]) Name() string {
	return k.name
}

// Results is the result-attachment table of a run, keyed by (participant, field).
// It also carries context-level values shared between modules and the
// selection published for each event.
type Results struct {
	fields   map[int]map[string]any
	shared   map[string]any
	selected map[int][]Entity
}

// NewResults creates an empty table.
func NewResults() *Results {
	return &Results{
		fields:   make(map[int]map[string]any),
		shared:   make(map[string]any),
		selected: make(map[int][]Entity),
	}
}

// Attach sets the value of key for participant pid, replacing any previous value.
func Attach[T any](r *Results, pid int, key Key[T], value T) {
	row, ok := r.fields[pid]
	if !ok {
		row = make(map[string]any)
		r.fields[pid] = row
	}
	row[key.name] = value
}

// Lookup returns the value of key for participant pid.
// ok is false when the field was never attached.
func Lookup[T any](r *Results, pid int, key Key[T]) (value T, ok bool) {
	raw, found := r.fields[pid][key.name]
	if !found {
		return value, false
	}
	value, ok = raw.(T)
	return value, ok
}

// Share publishes a context-level value for modules registered later.
func Share[T any](r *Results, key Key[T], value T) {
	r.shared[key.name] = value
}

// Shared returns a context-level value published with Share.
func Shared[T any](r *Results, key Key[T]) (value T, ok bool) {
	raw, found := r.shared[key.name]
	if !found {
		return value, false
	}
	value, ok = raw.(T)
	return value, ok
}

// PublishSelected records the current selection produced by the event at seq.
// The slice is copied.
func (r *Results) PublishSelected(seq int, entities []Entity) {
	out := make([]Entity, len(entities))
	copy(out, entities)
	r.selected[seq] = out
}

// Selected returns the current selection published for the event at seq.
func (r *Results) Selected(seq int) ([]Entity, bool) {
	e, ok := r.selected[seq]
	return e, ok
}

// Fields returns the names of the fields attached for pid.
func (r *Results) Fields(pid int) []string {
	var names []string
	for name := range r.fields[pid] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
