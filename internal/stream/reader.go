package stream

import (
	"context"
	"io"
	"time"
)

// ReaderOptions controls how a Reader pulls bytes from its transport.
type ReaderOptions struct {
	// ReadSize is the buffer size for each transport read.
	ReadSize int
	// StallTimeout fails the stream when a read yields nothing for this
	// long. Zero disables the check.
	StallTimeout time.Duration
}

// Reader reads upload events from an io.Reader.
type Reader struct {
	chunks   *chunkReader
	decoder  *TextDecoder
	splitter FrameSplitter
	queue    []string
	err      error
	eof      bool
}

// NewReader creates a new upload event reader.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	return &Reader{
		chunks:  newChunkReader(r, opts.ReadSize, opts.StallTimeout),
		decoder: NewTextDecoder(),
	}
}

// Next returns the next event. Returns io.EOF when the stream ended
// cleanly and every completed frame has been returned. Transport failures
// and cancellation are returned as *UploadError once the frames completed
// before them have been drained.
func (r *Reader) Next(ctx context.Context) (Event, error) {
	for {
		if len(r.queue) > 0 {
			frame := r.queue[0]
			r.queue = r.queue[1:]
			return ParseFrame(frame), nil
		}
		if r.err != nil {
			return Event{}, r.err
		}
		if r.eof {
			return Event{}, io.EOF
		}

		chunk, err := r.chunks.next(ctx)
		more := err == nil
		if text := r.decoder.Decode(chunk, more); text != "" {
			r.queue = append(r.queue, r.splitter.Push(text)...)
		}
		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			r.err = err
		}
	}
}

// Pending returns text received after the last delimiter. A non-empty
// value after io.EOF means the stream ended inside a frame.
func (r *Reader) Pending() string {
	return r.splitter.Remainder()
}

// Close stops the background reader. It does not close the transport.
func (r *Reader) Close() {
	r.chunks.finish()
}
