package replay

import "fmt"

// Kind tags an event with the decoder event it came from.
type Kind string

const (
	// KindGameStart marks the first frame of the replay. Carries no payload.
	KindGameStart Kind = "GameStart"

	// KindUnitBorn is emitted when a unit is created fully formed.
	KindUnitBorn Kind = "UnitBorn"

	// KindUnitInit is emitted when construction of a structure begins.
	KindUnitInit Kind = "UnitInit"

	// KindUnitDone is emitted when construction of a structure completes.
	KindUnitDone Kind = "UnitDone"

	// KindUnitDied is emitted when a unit is destroyed.
	KindUnitDied Kind = "UnitDied"

	// KindSelection is a change of the selection in a control slot.
	KindSelection Kind = "Selection"

	// KindSetHotkey assigns the current selection to a control group.
	KindSetHotkey Kind = "SetHotkey"

	// KindAddToHotkey adds the current selection to a control group.
	KindAddToHotkey Kind = "AddToHotkey"

	// KindGetFromHotkey recalls a control group into the current selection.
	KindGetFromHotkey Kind = "GetFromHotkey"

	// KindAbility is an ability (command) invocation.
	KindAbility Kind = "Ability"

	// KindPlayerLeave is emitted when a participant leaves the game.
	KindPlayerLeave Kind = "PlayerLeave"
)

// Kinds lists every kind the engine knows about, in declaration order.
var Kinds = []Kind{
	KindGameStart,
	KindUnitBorn,
	KindUnitInit,
	KindUnitDone,
	KindUnitDied,
	KindSelection,
	KindSetHotkey,
	KindAddToHotkey,
	KindGetFromHotkey,
	KindAbility,
	KindPlayerLeave,
}

// Validate checks that k is one of the known kinds.
func (k Kind) Validate() error {
	for _, known := range Kinds {
		if k == known {
			return nil
		}
	}
	return fmt.Errorf("unknown event kind: %q", string(k))
}

// IsHotkey reports whether k is one of the control group events.
func (k Kind) IsHotkey() bool {
	return k == KindSetHotkey || k == KindAddToHotkey || k == KindGetFromHotkey
}

// IsAction reports whether k counts as a player action for activity rates.
func (k Kind) IsAction() bool {
	return k == KindSelection || k == KindAbility || k.IsHotkey()
}

// CurrentSelection is the slot index of the implicit current selection.
// Slots 0-9 are the addressable control groups.
const CurrentSelection = 10

// SlotCount is the number of selection slots per participant.
const SlotCount = 11

// MaskType selects how Mask data is interpreted when deselecting.
type MaskType string

const (
	// MaskNone keeps every selected entity.
	MaskNone MaskType = "None"

	// MaskBits removes the entity at position i when bit i is set.
	MaskBits MaskType = "Mask"

	// MaskOneIndices lists the positions that are removed.
	MaskOneIndices MaskType = "OneIndices"

	// MaskZeroIndices lists the positions that are kept.
	MaskZeroIndices MaskType = "ZeroIndices"
)

// Mask describes which previously selected entities survive a selection change.
// Bits is used by MaskBits, Indices by the two index variants.
type Mask struct {
	Type    MaskType `json:"type" yaml:"type"`
	Bits    []bool   `json:"bits,omitempty" yaml:"bits,omitempty"`
	Indices []int    `json:"indices,omitempty" yaml:"indices,omitempty"`
}

// Clone returns a copy of m that shares no slices with it.
func (m Mask) Clone() Mask {
	if m.Bits != nil {
		m.Bits = append(make([]bool, 0, len(m.Bits)), m.Bits...)
	}
	if m.Indices != nil {
		m.Indices = append(make([]int, 0, len(m.Indices)), m.Indices...)
	}
	return m
}

// Validate checks the mask type. An empty type is treated as MaskNone.
func (m Mask) Validate() error {
	switch m.Type {
	case "", MaskNone, MaskBits, MaskOneIndices, MaskZeroIndices:
		return nil
	default:
		return fmt.Errorf("invalid mask type: %q", string(m.Type))
	}
}

// Event is one decoded replay event. Only the fields relevant to Kind are set.
type Event struct {
	Seq      int     `json:"seq" yaml:"seq"`                             // Position in the stream, assigned by the context
	Kind     Kind    `json:"kind" yaml:"kind"`                           // Decoder event tag
	Frame    int     `json:"frame" yaml:"frame"`                         // Game loop
	Second   int     `json:"second" yaml:"second"`                       // Elapsed game seconds
	PID      int     `json:"pid" yaml:"pid"`                             // Owning participant
	UnitID   int64   `json:"unit_id,omitempty" yaml:"unit_id,omitempty"` // Subject unit (born, init, died, ability caster)
	UnitType string  `json:"unit_type,omitempty" yaml:"unit_type,omitempty"`
	Ability  string  `json:"ability,omitempty" yaml:"ability,omitempty"`
	X        float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y        float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Slot     int     `json:"slot,omitempty" yaml:"slot,omitempty"` // Control slot (0-9, 10 = current selection)
	Mask     Mask    `json:"mask,omitempty" yaml:"mask,omitempty"`
	UnitIDs  []int64 `json:"unit_ids,omitempty" yaml:"unit_ids,omitempty"` // Newly selected units
}

// Minute returns the elapsed-minute bucket of the event.
func (e Event) Minute() int {
	return e.Second / 60
}

// Clone returns a copy of e that shares no slices with it.
func (e Event) Clone() Event {
	e.Mask = e.Mask.Clone()
	if e.UnitIDs != nil {
		e.UnitIDs = append(make([]int64, 0, len(e.UnitIDs)), e.UnitIDs...)
	}
	return e
}

// Validate performs the checks a decoder output must pass before dispatch.
func (e Event) Validate() error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if e.Frame < 0 || e.Second < 0 {
		return fmt.Errorf("event %d: negative timestamp (frame=%d, second=%d)", e.Seq, e.Frame, e.Second)
	}
	if e.Kind == KindSelection || e.Kind.IsHotkey() {
		if e.Slot < 0 || e.Slot >= SlotCount {
			return fmt.Errorf("event %d: slot %d out of range [0, %d)", e.Seq, e.Slot, SlotCount)
		}
		if err := e.Mask.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", e.Seq, err)
		}
	}
	return nil
}

// Participant is a player or observer of the replay.
type Participant struct {
	PID      int    `json:"pid" yaml:"pid"`
	Name     string `json:"name" yaml:"name"`
	Observer bool   `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// Camera is the playable camera bounding box in world units.
type Camera struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// Width returns the horizontal extent of the box.
func (c Camera) Width() float64 { return c.Right - c.Left }

// Height returns the vertical extent of the box.
func (c Camera) Height() float64 { return c.Top - c.Bottom }

// Valid reports whether the box has a positive area.
func (c Camera) Valid() bool { return c.Width() > 0 && c.Height() > 0 }

// MapInfo is the map metadata supplied alongside the event stream.
type MapInfo struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Camera      Camera `json:"camera" yaml:"camera"`
	ImageWidth  int    `json:"image_width,omitempty" yaml:"image_width,omitempty"`   // Cropped minimap width in pixels
	ImageHeight int    `json:"image_height,omitempty" yaml:"image_height,omitempty"` // Cropped minimap height in pixels
	SizeX       int    `json:"size_x,omitempty" yaml:"size_x,omitempty"`
	SizeY       int    `json:"size_y,omitempty" yaml:"size_y,omitempty"`
}

// PlayableCamera returns the camera box, falling back to the full map size
// when the decoder could not provide one.
func (m MapInfo) PlayableCamera() (Camera, bool) {
	if m.Camera.Valid() {
		return m.Camera, true
	}
	if m.SizeX > 0 && m.SizeY > 0 {
		return Camera{Left: 0, Right: float64(m.SizeX), Top: float64(m.SizeY), Bottom: 0}, true
	}
	return Camera{}, false
}
