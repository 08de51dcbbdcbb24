// Package eventlog reads already-decoded replays from JSON or YAML files.
//
// An event log is the decoder-neutral input of the analysis engine: the
// roster, the map metadata and the ordered event stream.
package eventlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/spoor/internal/timespec"
	"github.com/dyluth/spoor/pkg/replay"
)

// Format is the encoding of an event log file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// File is the on-disk layout of an event log.
type File struct {
	Name             string               `json:"name,omitempty" yaml:"name,omitempty"`
	LengthSeconds    int                  `json:"length_seconds,omitempty" yaml:"length_seconds,omitempty"`
	HasTrackerEvents bool                 `json:"has_tracker_events" yaml:"has_tracker_events"`
	Map              replay.MapInfo       `json:"map" yaml:"map"`
	Participants     []replay.Participant `json:"participants" yaml:"participants"`
	Events           []replay.Event       `json:"events" yaml:"events"`
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported event log extension %q (expected .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads an event log and builds a replay context from it.
func Load(path string) (*replay.Context, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	f, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	if f.Name == "" {
		f.Name = filepath.Base(path)
	}
	return f.Context()
}

// Decode parses an event log. JSON input rejects unknown fields.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown event log format %q", format)
	}
	return &f, nil
}

// Context validates the log and builds a replay context.
// Events that carry only a frame get their elapsed second derived from it.
// A missing length defaults to the last event's second.
func (f *File) Context() (*replay.Context, error) {
	events := make([]replay.Event, len(f.Events))
	copy(events, f.Events)

	length := f.LengthSeconds
	for i := range events {
		if events[i].Second == 0 && events[i].Frame > 0 {
			events[i].Second = timespec.ToSecond(events[i].Frame)
		}
		if f.LengthSeconds == 0 && events[i].Second > length {
			length = events[i].Second
		}
	}

	rc, err := replay.NewContext(f.Participants, events, f.Map)
	if err != nil {
		return nil, fmt.Errorf("invalid event log: %w", err)
	}
	rc.Name = f.Name
	rc.LengthSeconds = length
	rc.HasTrackerEvents = f.HasTrackerEvents
	return rc, nil
}

// Encode writes f in the given format. Used to export decoded replays.
func Encode(f *File, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event log to JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event log to YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown event log format %q", format)
	}
}
