package replay

import (
	"fmt"
	"sort"
)

// Context is the shared state of one analysis run.
// The event stream and roster are fixed at construction; modules write only
// through Entities (context loader) and Results (everyone).
type Context struct {
	Name             string    // Source of the replay, for logging
	LengthSeconds    int       // Game length in elapsed seconds
	Map              MapInfo   // Map metadata from the map collaborator
	HasTrackerEvents bool      // Whether the decoder produced fine-grained state-change events
	Entities         *Registry // Entity registry, maintained by the context loader
	Results          *Results  // Per-participant result attachments

	participants []Participant
	byPID        map[int]int
	events       []Event
}

// NewContext builds a context from a roster and an ordered event stream.
// Events keep their stream order; Seq is reassigned to the stream index.
// Returns an error when the roster has duplicate pids or an event is invalid.
func NewContext(participants []Participant, events []Event, mapInfo MapInfo) (*Context, error) {
	byPID := make(map[int]int, len(participants))
	for i, p := range participants {
		if _, exists := byPID[p.PID]; exists {
			return nil, fmt.Errorf("duplicate participant pid %d", p.PID)
		}
		byPID[p.PID] = i
	}

	stream := make([]Event, len(events))
	for i := range events {
		stream[i] = events[i].Clone()
		stream[i].Seq = i
		if err := stream[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid event stream: %w", err)
		}
	}

	roster := make([]Participant, len(participants))
	copy(roster, participants)

	return &Context{
		Map:          mapInfo,
		Entities:     NewRegistry(),
		Results:      NewResults(),
		participants: roster,
		byPID:        byPID,
		events:       stream,
	}, nil
}

// Len returns the number of events in the stream.
func (c *Context) Len() int {
	return len(c.events)
}

// Event returns a copy of the event at stream position seq.
func (c *Context) Event(seq int) Event {
	return c.events[seq].Clone()
}

// Each calls fn for every event in stream order. fn receives a copy that
// shares no memory with the stream.
func (c *Context) Each(fn func(Event)) {
	for _, ev := range c.events {
		fn(ev.Clone())
	}
}

// People returns players and observers in roster order.
func (c *Context) People() []Participant {
	out := make([]Participant, len(c.participants))
	copy(out, c.participants)
	return out
}

// Players returns the non-observer participants in roster order.
func (c *Context) Players() []Participant {
	var out []Participant
	for _, p := range c.participants {
		if !p.Observer {
			out = append(out, p)
		}
	}
	return out
}

// Participant looks up a participant by pid.
func (c *Context) Participant(pid int) (Participant, bool) {
	i, ok := c.byPID[pid]
	if !ok {
		return Participant{}, false
	}
	return c.participants[i], true
}

// Entity is a reference to a game unit: identifier, type tag and last known location.
type Entity struct {
	ID   int64   `json:"id"`
	Type string  `json:"type,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

// Registry records the latest known type and location of every entity seen in the stream.
type Registry struct {
	entities map[int64]Entity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[int64]Entity)}
}

// Touch records an entity without a position. A known entity keeps its
// last location; an empty type keeps the known type.
func (r *Registry) Touch(id int64, unitType string) {
	e, ok := r.entities[id]
	if !ok {
		e = Entity{ID: id}
	}
	if unitType != "" {
		e.Type = unitType
	}
	r.entities[id] = e
}

// Observe records or refreshes an entity. An empty type keeps the known type.
func (r *Registry) Observe(id int64, unitType string, x, y float64) {
	e, ok := r.entities[id]
	if !ok {
		e = Entity{ID: id}
	}
	if unitType != "" {
		e.Type = unitType
	}
	e.X, e.Y = x, y
	r.entities[id] = e
}

// Resolve returns the reference for id. Unknown ids resolve to a bare reference.
func (r *Registry) Resolve(id int64) Entity {
	if e, ok := r.entities[id]; ok {
		return e
	}
	return Entity{ID: id}
}

// ResolveAll resolves ids preserving their order.
func (r *Registry) ResolveAll(ids []int64) []Entity {
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.Resolve(id))
	}
	return out
}

// Len returns the number of known entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// IDs returns the known entity ids in ascending order.
func (r *Registry) IDs() []int64 {
	ids := make([]int64, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
