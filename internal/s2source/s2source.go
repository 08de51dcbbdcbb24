package s2source

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/icza/s2prot"
	"github.com/icza/s2prot/rep"

	"github.com/dyluth/spoor/internal/eventlog"
	"github.com/dyluth/spoor/pkg/replay"
)

// IsReplay reports whether path names a StarCraft II replay file.
func IsReplay(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".SC2Replay")
}

// Load decodes a replay file into an event log.
// Malformed game events are logged and skipped.
func Load(path string, opts Options) (*eventlog.File, error) {
	r, err := rep.NewFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode replay %s: %w", path, err)
	}
	defer r.Close()

	c := newConverter(opts)

	hasTracker := r.TrackerEvts != nil
	if hasTracker {
		evts := r.TrackerEvts.Evts
		// Player setup events come first, all at loop 0
		for i := range evts {
			if evts[i].Loop() > 0 {
				break
			}
			if evts[i].ID == rep.TrackerEvtIDPlayerSetup {
				c.setup(&evts[i])
			}
		}
		for i := range evts {
			c.trackerEvent(evts[i].Name, evts[i].Loop(), &evts[i])
		}
	} else {
		log.Printf("[S2Source] Replay %s has no tracker events", filepath.Base(path))
	}

	skipped := 0
	for i := range r.GameEvts {
		e := &r.GameEvts[i]
		if err := c.gameEvent(e.Name, e.Loop(), e.UserID(), e); err != nil {
			skipped++
			log.Printf("[S2Source] Skipping malformed event: %v", err)
		}
	}
	if skipped > 0 {
		log.Printf("[S2Source] Skipped %d malformed game events in %s", skipped, filepath.Base(path))
	}

	mapInfo := replay.MapInfo{
		Name:  r.Details.Title(),
		SizeX: int(r.InitData.GameDescription.MapSizeX()),
		SizeY: int(r.InitData.GameDescription.MapSizeY()),
	}

	return c.file(filepath.Base(path), r.Header.Loops(), hasTracker, mapInfo, slotNames(r.Details.Array("playerList"))), nil
}

// slotNames maps each lobby slot to its player's name with any clan tag removed.
func slotNames(playerList []interface{}) map[int64]string {
	names := make(map[int64]string)
	for i, item := range playerList {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		p := s2prot.Struct(m)
		slot := int64(i)
		if p.Value("workingSetSlotId") != nil {
			slot = p.Int("workingSetSlotId")
		}
		names[slot] = stripClanTag(p.Stringv("name"))
	}
	return names
}

// stripClanTag removes the "&lt;TAG&gt;<sp/>" prefix of clan members' names.
func stripClanTag(name string) string {
	if i := strings.Index(name, "<sp/>"); i >= 0 {
		return name[i+len("<sp/>"):]
	}
	return name
}
