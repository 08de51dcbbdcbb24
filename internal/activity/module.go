// Package activity counts player actions per second and per minute and
// derives the average actions per minute over the time each player was in
// the game.
package activity

import (
	"github.com/dyluth/spoor/pkg/replay"
)

var (
	// APSKey holds each player's action count per elapsed second.
	APSKey = replay.NewKey[map[int]int]("activity.aps")

	// APMKey holds each player's action count per elapsed minute.
	APMKey = replay.NewKey[map[int]int]("activity.apm")

	// AvgAPMKey holds each player's average actions per minute.
	AvgAPMKey = replay.NewKey[float64]("activity.avg_apm")

	// SecondsPlayedKey holds the denominator used for AvgAPMKey.
	SecondsPlayedKey = replay.NewKey[int]("activity.seconds_played")
)

type counts struct {
	aps           map[int]int
	apm           map[int]int
	total         int
	secondsPlayed int
}

// Module is the activity-rate aggregator. Observers are not counted.
type Module struct {
	players map[int]*counts
	order   []int
}

// NewModule creates the activity module.
func NewModule() *Module {
	return &Module{}
}

// Name identifies the module in run reports.
func (m *Module) Name() string { return "activity" }

// Start resets the counters of every player.
func (m *Module) Start(rc *replay.Context) error {
	m.players = make(map[int]*counts)
	m.order = nil
	for _, p := range rc.Players() {
		m.players[p.PID] = &counts{
			aps:           make(map[int]int),
			apm:           make(map[int]int),
			secondsPlayed: rc.LengthSeconds,
		}
		m.order = append(m.order, p.PID)
	}
	return nil
}

// Kinds returns the action kinds plus PlayerLeave.
func (m *Module) Kinds() []replay.Kind {
	kinds := []replay.Kind{replay.KindPlayerLeave}
	for _, k := range replay.Kinds {
		if k.IsAction() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Handle counts one action, or truncates play time when the player leaves.
func (m *Module) Handle(rc *replay.Context, ev replay.Event) error {
	c, ok := m.players[ev.PID]
	if !ok {
		return nil
	}
	if ev.Kind == replay.KindPlayerLeave {
		c.secondsPlayed = ev.Second
		return nil
	}
	c.aps[ev.Second]++
	c.apm[ev.Minute()]++
	c.total++
	return nil
}

// End attaches the per-second and per-minute counts and the average APM.
func (m *Module) End(rc *replay.Context) error {
	for _, pid := range m.order {
		c := m.players[pid]
		replay.Attach(rc.Results, pid, APSKey, c.aps)
		replay.Attach(rc.Results, pid, APMKey, c.apm)
		replay.Attach(rc.Results, pid, SecondsPlayedKey, c.secondsPlayed)
		replay.Attach(rc.Results, pid, AvgAPMKey, Average(c.total, c.secondsPlayed))
	}
	return nil
}

// Average returns actions per minute over secondsPlayed, or 0 when there is
// nothing to average.
func Average(actions, secondsPlayed int) float64 {
	if actions == 0 || secondsPlayed <= 0 {
		return 0
	}
	return float64(actions) / float64(secondsPlayed) * 60
}
