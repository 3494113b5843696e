package stream

import (
	"errors"
	"fmt"
)

// ErrorKind classifies upload session failures.
type ErrorKind int

const (
	// TransportError means the byte stream failed or disconnected before a
	// terminal event.
	TransportError ErrorKind = iota
	// ServerReportedError means the server sent an error event.
	ServerReportedError
	// MalformedFrame means a frame did not parse into a known event shape.
	// It is attached to malformed events and never ends a session.
	MalformedFrame
	// IncompleteStream means the stream ended cleanly without a final event.
	IncompleteStream
	// CallbackError means the progress callback returned an error or panicked.
	CallbackError
	// Cancelled means the caller's context ended the session.
	Cancelled
)

func (k ErrorKind) String() string {
	switch k {
	case TransportError:
		return "transport_error"
	case ServerReportedError:
		return "server_reported_error"
	case MalformedFrame:
		return "malformed_frame"
	case IncompleteStream:
		return "incomplete_stream"
	case CallbackError:
		return "callback_error"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("error_kind(%d)", int(k))
	}
}

// UploadError is the single failure type returned by Run.
type UploadError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *UploadError of the same kind carrying no
// message, which lets the kind sentinels below be used with errors.Is.
func (e *UploadError) Is(target error) bool {
	t, ok := target.(*UploadError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

var (
	ErrTransport        = &UploadError{Kind: TransportError}
	ErrServerReported   = &UploadError{Kind: ServerReportedError}
	ErrMalformedFrame   = &UploadError{Kind: MalformedFrame}
	ErrIncompleteStream = &UploadError{Kind: IncompleteStream}
	ErrCallback         = &UploadError{Kind: CallbackError}
	ErrCancelled        = &UploadError{Kind: Cancelled}

	// ErrStalled is wrapped by a TransportError when no chunk and no end of
	// stream arrived within the stall timeout.
	ErrStalled = errors.New("stream stalled")
)

// KindOf returns the kind of the first *UploadError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.Kind, true
	}
	return 0, false
}
