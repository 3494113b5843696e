package stream

import (
	"errors"
	"io"
	"sort"
	"sync"
)

// chunkedReader returns one scripted chunk per Read call.
type chunkedReader struct {
	chunks [][]byte
	reads  int
}

func newChunkedReader(chunks ...string) *chunkedReader {
	r := &chunkedReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	r.reads++
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// failingReader yields its chunks and then fails with err.
type failingReader struct {
	*chunkedReader
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, r.err
	}
	return r.chunkedReader.Read(p)
}

// blockingBody yields first and then blocks until closed.
type blockingBody struct {
	first  []byte
	sent   bool
	closed chan struct{}
	once   sync.Once
}

func newBlockingBody(first string) *blockingBody {
	return &blockingBody{first: []byte(first), closed: make(chan struct{})}
}

func (b *blockingBody) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, b.first), nil
	}
	<-b.closed
	return 0, errors.New("read on closed body")
}

func (b *blockingBody) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func (b *blockingBody) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

// splitAt cuts data at the given offsets; offsets may repeat or be unsorted.
func splitAt(data []byte, cuts []int) []string {
	sorted := append([]int(nil), cuts...)
	sort.Ints(sorted)
	var out []string
	prev := 0
	for _, c := range sorted {
		if c <= prev || c >= len(data) {
			continue
		}
		out = append(out, string(data[prev:c]))
		prev = c
	}
	return append(out, string(data[prev:]))
}

// recorder collects progress payloads.
type recorder struct {
	payloads []Payload
}

func (r *recorder) onProgress(p Payload) error {
	r.payloads = append(r.payloads, p)
	return nil
}
