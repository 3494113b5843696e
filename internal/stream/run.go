package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// Options configures Run.
type Options struct {
	// SessionID correlates log records of one upload.
	SessionID string
	Logger    *slog.Logger
	// OnMalformed is called once for each malformed frame.
	OnMalformed func(Event)
	// StallTimeout fails the session when the transport yields nothing for
	// this long. Zero disables the check.
	StallTimeout time.Duration
	ReadSize     int
}

// Run drives one upload session over body: it reads chunks until the
// stream ends, an error event arrives, the callback fails, or ctx is done.
// It returns the payload of the final event, or an *UploadError.
//
// A transport failure after a final event has been received is logged and
// the stored result is returned.
func Run(ctx context.Context, body io.Reader, onProgress ProgressFunc, opts Options) (Payload, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session := NewSession(opts.SessionID, onProgress, opts.OnMalformed, logger)
	reader := NewReader(body, ReaderOptions{ReadSize: opts.ReadSize, StallTimeout: opts.StallTimeout})
	defer reader.Close()

	started := time.Now()
	result, err := drive(ctx, reader, session, logger)

	attrs := []any{
		"session_id", session.ID,
		"state", session.State().String(),
		"events", session.Dispatched(),
		"malformed", session.Malformed(),
		"elapsed", time.Since(started),
	}
	if err != nil {
		kind, _ := KindOf(err)
		attrs = append(attrs, "kind", kind.String(), "error", err)
		logger.Debug("upload.session", attrs...)
		return nil, err
	}
	logger.Debug("upload.session", attrs...)
	return result, nil
}

func drive(ctx context.Context, reader *Reader, session *Session, logger *slog.Logger) (Payload, error) {
	for {
		evt, err := reader.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if pending := reader.Pending(); pending != "" && session.State() == StateOpen {
					logger.Debug("upload.incomplete_frame", "session_id", session.ID, "pending", pending)
				}
				return session.Finish()
			}
			uploadErr := asUploadError(err)
			if uploadErr.Kind == TransportError && session.State() == StateFinalized {
				logger.Warn("upload.transport_after_final", "session_id", session.ID, "error", err)
				return session.Finish()
			}
			return nil, session.Fail(uploadErr)
		}
		if err := session.Dispatch(evt); err != nil {
			return nil, err
		}
	}
}

func asUploadError(err error) *UploadError {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr
	}
	return &UploadError{Kind: TransportError, Message: "read upload stream", Err: err}
}
