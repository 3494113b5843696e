package stream

import (
	"encoding/json"
	"fmt"
)

// EventKind discriminates the decoded form of a frame.
type EventKind int

const (
	EventMalformed EventKind = iota
	EventStatus
	EventFinal
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventFinal:
		return "final"
	case EventError:
		return "error"
	default:
		return "malformed"
	}
}

// Payload is the key-value body carried by the data line of a frame.
type Payload map[string]any

// String returns the string field key, or "" if absent or not a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns the numeric field key truncated to int, or 0.
func (p Payload) Int(key string) int {
	switch n := p[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

// Float returns the numeric field key as float64, and whether it was numeric.
func (p Payload) Float(key string) (float64, bool) {
	switch n := p[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Decode re-encodes the payload and unmarshals it into v.
func (p Payload) Decode(v any) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// Event is one parsed frame of the upload stream.
type Event struct {
	Kind EventKind
	// Type is the declared event type, as written in the frame.
	Type    string
	Payload Payload
	// Message is set for EventError.
	Message string
	// Raw is the frame text the event was parsed from.
	Raw string
	// Err explains why an EventMalformed frame was rejected.
	Err error
}
