package stream

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Declared event types understood by the session.
const (
	TypeStatus = "status"
	TypeFinal  = "final"
	TypeError  = "error"
)

// ParseFrame decodes one completed frame. Frames that are not exactly an
// "event:" line followed by a "data:" line carrying a JSON object, or that
// declare an unknown type, come back as EventMalformed with Err set.
func ParseFrame(frame string) Event {
	lines := strings.Split(frame, "\n")
	if len(lines) != 2 {
		return malformed(frame, "expected event and data lines, got %d line(s)", len(lines))
	}
	eventType, ok := fieldValue(lines[0], "event")
	if !ok {
		return malformed(frame, "missing event field")
	}
	data, ok := fieldValue(lines[1], "data")
	if !ok {
		return malformed(frame, "missing data field")
	}
	if !gjson.Valid(data) {
		return malformed(frame, "data is not valid JSON")
	}
	parsed := gjson.Parse(data)
	if !parsed.IsObject() {
		return malformed(frame, "data is not a JSON object")
	}
	payload, _ := parsed.Value().(map[string]any)
	if payload == nil {
		payload = Payload{}
	}

	evt := Event{Type: eventType, Payload: payload, Raw: frame}
	switch eventType {
	case TypeStatus:
		evt.Kind = EventStatus
	case TypeFinal:
		evt.Kind = EventFinal
	case TypeError:
		evt.Kind = EventError
		evt.Message = errorMessage(parsed, data)
	default:
		bad := malformed(frame, "unrecognized event type %q", eventType)
		bad.Type = eventType
		bad.Payload = payload
		return bad
	}
	return evt
}

// fieldValue extracts the value of "name: value" (the space is optional).
func fieldValue(line, name string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	rest, ok := strings.CutPrefix(line, name+":")
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(rest, " "), true
}

func errorMessage(parsed gjson.Result, data string) string {
	for _, key := range []string{"message", "error"} {
		if v := parsed.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return data
}

func malformed(frame, format string, args ...any) Event {
	return Event{
		Kind: EventMalformed,
		Raw:  frame,
		Err:  &UploadError{Kind: MalformedFrame, Message: fmt.Sprintf(format, args...)},
	}
}
