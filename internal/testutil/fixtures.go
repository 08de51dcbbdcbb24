// Package testutil holds fixtures shared by command and package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/spoor/pkg/archive"
)

// SampleEventLog is a one-minute game of a single zerg player and an observer.
// Analyzed with the default configuration it yields:
//   - control group 4 holding [Hatchery Drone]
//   - 3 actions, so an average APM of 3.0
//   - one radius-10 Hatchery disk, 3.17% coverage in minute 0
const SampleEventLog = `name: sample-game
length_seconds: 60
has_tracker_events: true
map:
  name: Test Map
  camera: {left: 0, right: 100, top: 100, bottom: 0}
participants:
  - {pid: 1, name: zerg}
  - {pid: 16, name: caster, observer: true}
events:
  - {kind: UnitBorn, pid: 1, unit_id: 1, unit_type: Hatchery, x: 50, y: 50}
  - {kind: UnitBorn, pid: 1, unit_id: 2, unit_type: Drone, x: 52, y: 50}
  - {kind: Selection, pid: 1, frame: 16, second: 1, slot: 10, unit_ids: [1, 2]}
  - {kind: SetHotkey, pid: 1, frame: 32, second: 2, slot: 4}
  - {kind: Ability, pid: 1, frame: 48, second: 3, unit_id: 2, ability: Gather}
`

// NoTrackerEventLog lacks tracker events, so the coverage module is skipped.
const NoTrackerEventLog = `name: no-tracker
length_seconds: 30
has_tracker_events: false
map:
  camera: {left: 0, right: 100, top: 100, bottom: 0}
participants:
  - {pid: 1, name: terran}
events:
  - {kind: Selection, pid: 1, frame: 16, second: 1, slot: 10, unit_ids: [7]}
`

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Archive is an in-memory Redis server with a connected archive client.
type Archive struct {
	Server   *miniredis.Miniredis
	Client   *archive.Client
	URL      string
	Instance string
}

// StartArchive starts an in-memory archive for instance. Both the server and
// the client are closed when the test ends.
func StartArchive(t *testing.T, instance string) *Archive {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := archive.NewClient(&redis.Options{Addr: mr.Addr()}, instance)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return &Archive{
		Server:   mr,
		Client:   client,
		URL:      "redis://" + mr.Addr(),
		Instance: instance,
	}
}
