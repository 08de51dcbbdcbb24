// Package replay provides the typed data model shared by the spoor engine and
// its analysis modules.
//
// # Overview
//
// A replay Context is the single shared workspace of one analysis run. It holds
// the participant roster, the ordered event stream produced by a decoder, the
// map metadata, the entity registry maintained by the context loader, and the
// Results table where analysis modules attach their derived state.
//
// # Core Concepts
//
// Events are immutable records. Modules receive them by value and never
// rewrite the stream; anything a module derives from an event is attached to
// the Results table instead (for example the current selection published per
// event sequence number).
//
// Results are keyed by (participant, field). Each module declares its own
// typed keys with NewKey and reads or writes them through Attach and Lookup,
// so one module's attachments cannot be confused with another's:
//
//	var historyKey = replay.NewKey[*History]("selection.history")
//
//	replay.Attach(rc.Results, pid, historyKey, h)
//	h, ok := replay.Lookup(rc.Results, pid, historyKey)
//
// # Lifecycle
//
// Everything attached to a Context lives exactly as long as the Context. There
// is no persistence here; export adapters read the Results table after the
// engine has finished.
package replay
