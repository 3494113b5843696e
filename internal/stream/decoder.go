package stream

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextDecoder turns successive byte chunks into UTF-8 text. A multi-byte
// character split across chunks is held back until its remaining bytes
// arrive.
type TextDecoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

// NewTextDecoder returns a decoder with empty carried state.
func NewTextDecoder() *TextDecoder {
	return &TextDecoder{t: unicode.UTF8.NewDecoder()}
}

// Decode returns the text decoded from chunk. more reports whether further
// chunks will follow; when false, any held partial sequence is flushed and
// the decoder is reset.
func (d *TextDecoder) Decode(chunk []byte, more bool) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}
	if len(src) == 0 {
		if !more {
			d.t.Reset()
		}
		return ""
	}
	if cap(d.dst) < len(src)+8 {
		d.dst = make([]byte, 0, 2*len(src)+8)
	}

	var out []byte
	for {
		dst := d.dst[:cap(d.dst)]
		nDst, nSrc, err := d.t.Transform(dst, src, !more)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]

		switch {
		case err == nil:
			if !more {
				d.t.Reset()
			}
			return string(out)
		case errors.Is(err, transform.ErrShortDst):
			if nSrc == 0 && nDst == 0 {
				d.dst = make([]byte, 0, 2*cap(d.dst))
			}
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
			return string(out)
		default:
			// The UTF-8 decoder replaces invalid input instead of failing,
			// so this is unreachable in practice.
			d.pending = nil
			return string(out)
		}
	}
}

// Buffered reports how many bytes of an incomplete character are held.
func (d *TextDecoder) Buffered() int {
	return len(d.pending)
}
