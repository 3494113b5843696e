package stream

import (
	"fmt"
	"log/slog"
)

// State is the lifecycle position of an upload session.
type State int

const (
	StateOpen State = iota
	StateFinalized
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateFinalized:
		return "finalized"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ProgressFunc receives the payload of each status event. A non-nil error
// aborts the session with a CallbackError.
type ProgressFunc func(Payload) error

// Session routes events for one upload call. It is not safe for concurrent
// use; the read loop is its only owner.
type Session struct {
	ID          string
	onProgress  ProgressFunc
	onMalformed func(Event)
	logger      *slog.Logger

	state  State
	result Payload
	err    *UploadError

	dispatched int
	malformed  int
}

// NewSession creates an open session. onProgress may be nil.
func NewSession(id string, onProgress ProgressFunc, onMalformed func(Event), logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:          id,
		onProgress:  onProgress,
		onMalformed: onMalformed,
		logger:      logger,
	}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Terminal reports whether the session no longer dispatches events.
func (s *Session) Terminal() bool {
	return s.state == StateClosed || s.state == StateFailed
}

// Dispatched returns how many events reached a consumer, malformed ones
// included.
func (s *Session) Dispatched() int { return s.dispatched }

// Malformed returns how many malformed frames were reported.
func (s *Session) Malformed() int { return s.malformed }

// Dispatch applies one event. It returns the session failure once the
// session has failed; after that every call is a no-op returning the same
// failure.
func (s *Session) Dispatch(evt Event) error {
	switch s.state {
	case StateFailed:
		return s.err
	case StateClosed:
		return nil
	}

	s.dispatched++
	switch evt.Kind {
	case EventStatus:
		if err := s.progress(evt.Payload); err != nil {
			return s.Fail(err)
		}
	case EventFinal:
		if s.state == StateFinalized {
			s.logger.Warn("upload.final_replaced", "session_id", s.ID)
		}
		s.result = evt.Payload
		s.state = StateFinalized
	case EventError:
		return s.Fail(&UploadError{Kind: ServerReportedError, Message: evt.Message})
	default:
		s.malformed++
		attrs := []any{"session_id", s.ID, "raw", evt.Raw}
		if evt.Err != nil {
			attrs = append(attrs, "error", evt.Err)
		}
		s.logger.Warn("upload.malformed_frame", attrs...)
		if s.onMalformed != nil {
			s.onMalformed(evt)
		}
	}
	return nil
}

// Finish resolves the session at the end of the stream.
func (s *Session) Finish() (Payload, error) {
	switch s.state {
	case StateFailed:
		return nil, s.err
	case StateFinalized, StateClosed:
		s.state = StateClosed
		return s.result, nil
	default:
		return nil, s.Fail(&UploadError{Kind: IncompleteStream, Message: "stream ended without a final event"})
	}
}

// Fail moves the session to StateFailed. Only the first failure is kept.
func (s *Session) Fail(err *UploadError) error {
	if s.state == StateFailed {
		return s.err
	}
	s.state = StateFailed
	s.err = err
	s.result = nil
	return s.err
}

func (s *Session) progress(p Payload) (err *UploadError) {
	if s.onProgress == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &UploadError{Kind: CallbackError, Message: "progress callback panicked", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if cbErr := s.onProgress(p); cbErr != nil {
		return &UploadError{Kind: CallbackError, Message: "progress callback failed", Err: cbErr}
	}
	return nil
}
