// Package s2source builds event logs from StarCraft II replay files.
//
// Decoding is done by github.com/icza/s2prot; this package only maps decoded
// tracker and game events onto the engine's event kinds.
package s2source

import (
	"fmt"
	"sort"

	"github.com/icza/s2prot"

	"github.com/dyluth/spoor/internal/eventlog"
	"github.com/dyluth/spoor/internal/timespec"
	"github.com/dyluth/spoor/pkg/replay"
)

// ObserverPIDBase is added to the user id of participants who produce game
// events without owning a player slot.
const ObserverPIDBase = 100

// Target points of commands are fixed point with 12 fractional bits.
const pointScale = 4096.0

// Options tunes the conversion.
type Options struct {
	// AbilityNames maps "link/cmdIndex" to the ability name used in events.
	// Unmapped abilities are named "Ability<link>/<cmdIndex>".
	AbilityNames map[string]string
}

// record is the accessor surface of a decoded s2prot structure.
type record interface {
	Int(path ...string) int64
	Stringv(path ...string) string
	Value(path ...string) interface{}
	Array(path ...string) []interface{}
}

type player struct {
	pid    int
	slotID int64
	name   string
}

// converter accumulates events in stream order.
type converter struct {
	opts      Options
	byUser    map[int64]int // user id -> pid
	players   []player
	observers map[int]replay.Participant
	game      []timed
	tracker   []timed
}

type timed struct {
	loop int64
	ev   replay.Event
}

func newConverter(opts Options) *converter {
	return &converter{
		opts:      opts,
		byUser:    make(map[int64]int),
		observers: make(map[int]replay.Participant),
	}
}

// setup registers a player from a PlayerSetup tracker event.
// Computer players have no user id and produce no game events.
func (c *converter) setup(rec record) {
	p := player{pid: int(rec.Int("playerId")), slotID: rec.Int("slotId")}
	if rec.Value("userId") != nil {
		c.byUser[rec.Int("userId")] = p.pid
	}
	c.players = append(c.players, p)
}

// trackerEvent converts one tracker event. Unhandled names are ignored.
func (c *converter) trackerEvent(name string, loop int64, rec record) {
	ev := replay.Event{Frame: int(loop), Second: timespec.ToSecond(int(loop))}
	switch name {
	case "UnitBorn", "UnitInit":
		ev.Kind = replay.KindUnitBorn
		if name == "UnitInit" {
			ev.Kind = replay.KindUnitInit
		}
		ev.PID = int(rec.Int("controlPlayerId"))
		ev.UnitID = unitTag(rec.Int("unitTagIndex"), rec.Int("unitTagRecycle"))
		ev.UnitType = rec.Stringv("unitTypeName")
		ev.X = float64(rec.Int("x"))
		ev.Y = float64(rec.Int("y"))
	case "UnitDone":
		ev.Kind = replay.KindUnitDone
		ev.UnitID = unitTag(rec.Int("unitTagIndex"), rec.Int("unitTagRecycle"))
	case "UnitDied":
		ev.Kind = replay.KindUnitDied
		ev.PID = int(rec.Int("killerPlayerId"))
		ev.UnitID = unitTag(rec.Int("unitTagIndex"), rec.Int("unitTagRecycle"))
		ev.X = float64(rec.Int("x"))
		ev.Y = float64(rec.Int("y"))
	default:
		return
	}
	c.tracker = append(c.tracker, timed{loop: loop, ev: ev})
}

// gameEvent converts one game event. Returns an error only for malformed
// payloads of handled events.
func (c *converter) gameEvent(name string, loop, user int64, rec record) error {
	ev := replay.Event{Frame: int(loop), Second: timespec.ToSecond(int(loop))}

	switch name {
	case "SelectionDelta":
		ev.Kind = replay.KindSelection
		ev.Slot = int(rec.Int("controlGroupId"))
		mask, err := decodeMask(rec.Value("delta", "removeMask"))
		if err != nil {
			return fmt.Errorf("selection delta at loop %d: %w", loop, err)
		}
		ev.Mask = mask
		for _, v := range rec.Array("delta", "addUnitTags") {
			if tag, ok := v.(int64); ok {
				ev.UnitIDs = append(ev.UnitIDs, tag)
			}
		}
	case "ControlGroupUpdate":
		switch rec.Int("controlGroupUpdate") {
		case 0, 4: // set, set and steal
			ev.Kind = replay.KindSetHotkey
		case 1, 5: // append, append and steal
			ev.Kind = replay.KindAddToHotkey
		case 2:
			ev.Kind = replay.KindGetFromHotkey
		default:
			return nil
		}
		ev.Slot = int(rec.Int("controlGroupIndex"))
		// Append and recall both deselect from the group before acting.
		if ev.Kind != replay.KindSetHotkey {
			mask, err := decodeMask(rec.Value("mask"))
			if err != nil {
				return fmt.Errorf("control group update at loop %d: %w", loop, err)
			}
			ev.Mask = mask
		}
	case "Cmd":
		if rec.Value("abil") == nil {
			return nil
		}
		ev.Kind = replay.KindAbility
		ev.Ability = c.abilityName(rec.Int("abil", "abilLink"), rec.Int("abil", "abilCmdIndex"))
		switch {
		case rec.Value("data", "TargetPoint") != nil:
			ev.X = float64(rec.Int("data", "TargetPoint", "x")) / pointScale
			ev.Y = float64(rec.Int("data", "TargetPoint", "y")) / pointScale
		case rec.Value("data", "TargetUnit") != nil:
			ev.X = float64(rec.Int("data", "TargetUnit", "snapshotPoint", "x")) / pointScale
			ev.Y = float64(rec.Int("data", "TargetUnit", "snapshotPoint", "y")) / pointScale
		}
	case "GameUserLeave":
		ev.Kind = replay.KindPlayerLeave
	default:
		return nil
	}

	ev.PID = c.participant(user)
	c.game = append(c.game, timed{loop: loop, ev: ev})
	return nil
}

// participant maps a user id to a pid, registering an observer for users
// without a player slot.
func (c *converter) participant(user int64) int {
	if pid, ok := c.byUser[user]; ok {
		return pid
	}
	pid := ObserverPIDBase + int(user)
	if _, ok := c.observers[pid]; !ok {
		c.observers[pid] = replay.Participant{PID: pid, Name: fmt.Sprintf("observer-%d", user), Observer: true}
	}
	return pid
}

func (c *converter) abilityName(link, cmdIndex int64) string {
	key := fmt.Sprintf("%d/%d", link, cmdIndex)
	if name, ok := c.opts.AbilityNames[key]; ok {
		return name
	}
	return "Ability" + key
}

// roster returns players in pid order followed by observers in pid order.
// names maps a lobby slot id to the player name.
func (c *converter) roster(names map[int64]string) []replay.Participant {
	var out []replay.Participant
	players := append([]player(nil), c.players...)
	sort.Slice(players, func(i, j int) bool { return players[i].pid < players[j].pid })
	for _, p := range players {
		name := names[p.slotID]
		if name == "" {
			name = fmt.Sprintf("player-%d", p.pid)
		}
		out = append(out, replay.Participant{PID: p.pid, Name: name})
	}

	pids := make([]int, 0, len(c.observers))
	for pid := range c.observers {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	for _, pid := range pids {
		out = append(out, c.observers[pid])
	}
	return out
}

// stream merges game and tracker events by loop. At equal loops game events
// come first, each source keeping its own order.
func (c *converter) stream() []replay.Event {
	events := make([]replay.Event, 0, len(c.game)+len(c.tracker)+1)
	events = append(events, replay.Event{Kind: replay.KindGameStart})

	i, j := 0, 0
	for i < len(c.game) || j < len(c.tracker) {
		if j >= len(c.tracker) || (i < len(c.game) && c.game[i].loop <= c.tracker[j].loop) {
			events = append(events, c.game[i].ev)
			i++
			continue
		}
		events = append(events, c.tracker[j].ev)
		j++
	}
	return events
}

// file assembles the event log.
func (c *converter) file(name string, lengthLoops int64, hasTracker bool, mapInfo replay.MapInfo, names map[int64]string) *eventlog.File {
	return &eventlog.File{
		Name:             name,
		LengthSeconds:    timespec.ToSecond(int(lengthLoops)),
		HasTrackerEvents: hasTracker,
		Map:              mapInfo,
		Participants:     c.roster(names),
		Events:           c.stream(),
	}
}

// unitTag packs a tracker unit tag the way game events reference units.
func unitTag(index, recycle int64) int64 {
	return index<<18 | recycle
}

// decodeMask converts a removeMask choice. The choice is decoded by s2prot as
// a single-key structure naming the variant.
func decodeMask(v interface{}) (replay.Mask, error) {
	if v == nil {
		return replay.Mask{Type: replay.MaskNone}, nil
	}
	choice, ok := asMap(v)
	if !ok || len(choice) != 1 {
		return replay.Mask{}, fmt.Errorf("unexpected mask encoding %T", v)
	}

	for variant, data := range choice {
		switch variant {
		case "None":
			return replay.Mask{Type: replay.MaskNone}, nil
		case "Mask":
			bits, err := decodeBits(data)
			if err != nil {
				return replay.Mask{}, err
			}
			return replay.Mask{Type: replay.MaskBits, Bits: bits}, nil
		case "OneIndices", "ZeroIndices":
			var indices []int
			items, _ := data.([]interface{})
			for _, item := range items {
				n, ok := item.(int64)
				if !ok {
					return replay.Mask{}, fmt.Errorf("unexpected %s index %T", variant, item)
				}
				indices = append(indices, int(n))
			}
			t := replay.MaskOneIndices
			if variant == "ZeroIndices" {
				t = replay.MaskZeroIndices
			}
			return replay.Mask{Type: t, Indices: indices}, nil
		default:
			return replay.Mask{}, fmt.Errorf("unknown mask variant %q", variant)
		}
	}
	return replay.Mask{}, nil
}

// decodeBits unpacks a bit array, least significant bit of each byte first.
func decodeBits(v interface{}) ([]bool, error) {
	var arr s2prot.BitArr
	switch b := v.(type) {
	case s2prot.BitArr:
		arr = b
	case *s2prot.BitArr:
		arr = *b
	default:
		return nil, fmt.Errorf("unexpected bit mask encoding %T", v)
	}

	bits := make([]bool, arr.Count)
	for i := range bits {
		if i/8 < len(arr.Data) {
			bits[i] = arr.Data[i/8]&(1<<uint(i%8)) != 0
		}
	}
	return bits, nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case s2prot.Struct:
		return m, true
	case map[string]interface{}:
		return m, true
	default:
		return nil, false
	}
}
