package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// DefaultReadSize is the buffer size used for each transport read.
const DefaultReadSize = 32 * 1024

type readResult struct {
	n   int
	err error
}

// chunkReader performs transport reads on a helper goroutine so that the
// caller can give up on a blocked read when its context ends or the stall
// timeout fires. A read is only issued when next is called.
type chunkReader struct {
	src   io.Reader
	buf   []byte
	stall time.Duration

	reqs      chan struct{}
	results   chan readResult
	startOnce sync.Once
	closeOnce sync.Once
	done      bool
}

func newChunkReader(src io.Reader, size int, stall time.Duration) *chunkReader {
	if size <= 0 {
		size = DefaultReadSize
	}
	return &chunkReader{
		src:     src,
		buf:     make([]byte, size),
		stall:   stall,
		reqs:    make(chan struct{}),
		results: make(chan readResult, 1),
	}
}

func (c *chunkReader) pump() {
	for range c.reqs {
		n, err := c.src.Read(c.buf)
		c.results <- readResult{n: n, err: err}
	}
}

// next returns the next chunk of bytes. The slice is only valid until the
// following call. At the end of the stream it returns io.EOF, possibly
// together with a final chunk.
func (c *chunkReader) next(ctx context.Context) ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		c.abort()
		return nil, cancelled(err)
	}
	c.startOnce.Do(func() { go c.pump() })

	select {
	case c.reqs <- struct{}{}:
	case <-ctx.Done():
		c.abort()
		return nil, cancelled(ctx.Err())
	}

	var stallC <-chan time.Time
	if c.stall > 0 {
		timer := time.NewTimer(c.stall)
		defer timer.Stop()
		stallC = timer.C
	}

	for {
		select {
		case res := <-c.results:
			switch {
			case res.err == nil:
				if res.n == 0 {
					// A zero-length read without error carries no
					// information; ask again.
					select {
					case c.reqs <- struct{}{}:
						continue
					case <-ctx.Done():
						c.abort()
						return nil, cancelled(ctx.Err())
					}
				}
				return c.buf[:res.n], nil
			case errors.Is(res.err, io.EOF):
				c.finish()
				return c.buf[:res.n], io.EOF
			default:
				c.finish()
				if ctx.Err() != nil {
					return nil, cancelled(ctx.Err())
				}
				return c.buf[:res.n], &UploadError{Kind: TransportError, Message: "read upload stream", Err: res.err}
			}
		case <-ctx.Done():
			c.abort()
			return nil, cancelled(ctx.Err())
		case <-stallC:
			c.abort()
			return nil, &UploadError{Kind: TransportError, Message: "no data within " + c.stall.String(), Err: ErrStalled}
		}
	}
}

// finish stops the pump after the transport reported its final result.
func (c *chunkReader) finish() {
	c.done = true
	c.closeOnce.Do(func() { close(c.reqs) })
}

// abort closes the source, if it can be closed, so that an in-flight read
// returns, then stops the pump.
func (c *chunkReader) abort() {
	c.done = true
	if closer, ok := c.src.(io.Closer); ok {
		_ = closer.Close()
	}
	c.closeOnce.Do(func() { close(c.reqs) })
}

func cancelled(err error) error {
	return &UploadError{Kind: Cancelled, Message: "upload session cancelled", Err: err}
}
