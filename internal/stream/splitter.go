package stream

import "strings"

// Delimiter separates frames in the upload stream.
const Delimiter = "\n\n"

// FrameSplitter accumulates decoded text and cuts it into frames.
type FrameSplitter struct {
	buf strings.Builder
	// scanFrom is where the next delimiter search starts. It trails the
	// end of the buffer by one byte so a delimiter split across two pushes
	// is still found.
	scanFrom int
}

// Push appends text and returns every frame completed by it, in the order
// their delimiters appear. Frames made only of line breaks are dropped.
func (s *FrameSplitter) Push(text string) []string {
	if text == "" {
		return nil
	}
	s.buf.WriteString(text)
	data := s.buf.String()

	var frames []string
	start := 0
	from := s.scanFrom
	for {
		idx := strings.Index(data[from:], Delimiter)
		if idx < 0 {
			break
		}
		end := from + idx
		if frame := trimFrame(data[start:end]); frame != "" {
			frames = append(frames, frame)
		}
		start = end + len(Delimiter)
		from = start
	}

	if start > 0 {
		rest := data[start:]
		s.buf.Reset()
		s.buf.WriteString(rest)
		data = rest
	}
	s.scanFrom = max(len(data)-len(Delimiter)+1, 0)
	return frames
}

// Remainder returns the buffered text that has not been terminated by a
// delimiter yet.
func (s *FrameSplitter) Remainder() string {
	return s.buf.String()
}

// Reset discards buffered text.
func (s *FrameSplitter) Reset() {
	s.buf.Reset()
	s.scanFrom = 0
}

func trimFrame(frame string) string {
	return strings.Trim(frame, "\r\n")
}
