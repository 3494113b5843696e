package stream

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func run(t *testing.T, body io.Reader, rec *recorder, opts Options) (Payload, error) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	var onProgress ProgressFunc
	if rec != nil {
		onProgress = rec.onProgress
	}
	return Run(context.Background(), body, onProgress, opts)
}

func TestRunProgressThenFinal(t *testing.T) {
	body := newChunkedReader(
		"event: status\ndata: {\"pct\":10}\n\n",
		"event: status\ndata: {\"pct\":",
		"50}\n\nevent: final\ndata: {\"url\":\"/f/1\"}\n\n",
	)
	rec := &recorder{}

	result, err := run(t, body, rec, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []Payload{{"pct": float64(10)}, {"pct": float64(50)}}
	if !reflect.DeepEqual(rec.payloads, want) {
		t.Fatalf("progress: got %v, want %v", rec.payloads, want)
	}
	if result.String("url") != "/f/1" {
		t.Fatalf("result: got %v", result)
	}
}

func TestRunServerError(t *testing.T) {
	body := newChunkedReader("event: error\ndata: {\"message\":\"disk full\"}\n\n")
	rec := &recorder{}

	result, err := run(t, body, rec, Options{})
	if !errors.Is(err, ErrServerReported) {
		t.Fatalf("got %v, want ServerReportedError", err)
	}
	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) || uploadErr.Message != "disk full" {
		t.Fatalf("message: got %v", err)
	}
	if result != nil {
		t.Fatalf("result on failure: %v", result)
	}
	if len(rec.payloads) != 0 {
		t.Fatalf("progress called %d times", len(rec.payloads))
	}
}

func TestRunIncompleteTrailingFrame(t *testing.T) {
	_, err := run(t, newChunkedReader("event: stat"), nil, Options{})
	if !errors.Is(err, ErrIncompleteStream) {
		t.Fatalf("got %v, want IncompleteStream", err)
	}
}

func TestRunEmptyStream(t *testing.T) {
	_, err := run(t, newChunkedReader(), nil, Options{})
	if !errors.Is(err, ErrIncompleteStream) {
		t.Fatalf("got %v, want IncompleteStream", err)
	}
}

func TestRunErrorHaltsSameChunk(t *testing.T) {
	body := newChunkedReader(
		"event: status\ndata: {\"pct\":1}\n\n" +
			"event: error\ndata: {\"message\":\"stop\"}\n\n" +
			"event: status\ndata: {\"pct\":2}\n\n" +
			"event: final\ndata: {}\n\n",
	)
	rec := &recorder{}

	_, err := run(t, body, rec, Options{})
	if !errors.Is(err, ErrServerReported) {
		t.Fatalf("got %v", err)
	}
	if len(rec.payloads) != 1 {
		t.Fatalf("progress after error: got %v", rec.payloads)
	}
}

func TestRunNoReadAfterError(t *testing.T) {
	body := newChunkedReader(
		"event: error\ndata: {\"message\":\"x\"}\n\n",
		"event: final\ndata: {}\n\n",
	)
	if _, err := run(t, body, nil, Options{}); !errors.Is(err, ErrServerReported) {
		t.Fatalf("got %v", err)
	}
	if body.reads != 1 {
		t.Fatalf("reads: got %d, want 1", body.reads)
	}
}

func TestRunMalformedBetweenValid(t *testing.T) {
	body := newChunkedReader(
		"event: status\ndata: {\"pct\":1}\n\n",
		"event: status\ndata: not json\n\n",
		"event: mystery\ndata: {}\n\n",
		"event: status\ndata: {\"pct\":2}\n\nevent: final\ndata: {\"ok\":true}\n\n",
	)
	rec := &recorder{}
	var malformed []Event

	result, err := run(t, body, rec, Options{OnMalformed: func(e Event) { malformed = append(malformed, e) }})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.payloads) != 2 {
		t.Fatalf("progress: got %v", rec.payloads)
	}
	if len(malformed) != 2 {
		t.Fatalf("malformed: got %d, want 2", len(malformed))
	}
	if result["ok"] != true {
		t.Fatalf("result: got %v", result)
	}
}

func TestRunStatusAfterFinalForwarded(t *testing.T) {
	body := newChunkedReader("event: final\ndata: {\"id\":1}\n\nevent: status\ndata: {\"pct\":100}\n\n")
	rec := &recorder{}

	result, err := run(t, body, rec, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.payloads) != 1 || rec.payloads[0].Int("pct") != 100 {
		t.Fatalf("progress: got %v", rec.payloads)
	}
	if result.Int("id") != 1 {
		t.Fatalf("result: got %v", result)
	}
}

func TestRunCallbackErrorAborts(t *testing.T) {
	body := newChunkedReader(
		"event: status\ndata: {\"pct\":1}\n\nevent: status\ndata: {\"pct\":2}\n\n",
		"event: final\ndata: {}\n\n",
	)
	var calls int
	_, err := Run(context.Background(), body, func(Payload) error {
		calls++
		return errors.New("render failed")
	}, Options{Logger: discardLogger()})
	if !errors.Is(err, ErrCallback) {
		t.Fatalf("got %v, want CallbackError", err)
	}
	if calls != 1 {
		t.Fatalf("callback calls: got %d, want 1", calls)
	}
}

func TestRunTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	body := &failingReader{chunkedReader: newChunkedReader("event: status\ndata: {}\n\n"), err: cause}
	rec := &recorder{}

	_, err := run(t, body, rec, Options{})
	if !errors.Is(err, ErrTransport) || !errors.Is(err, cause) {
		t.Fatalf("got %v, want TransportError wrapping cause", err)
	}
	if len(rec.payloads) != 1 {
		t.Fatalf("frames before failure not delivered: %v", rec.payloads)
	}
}

func TestRunTransportErrorAfterFinal(t *testing.T) {
	body := &failingReader{
		chunkedReader: newChunkedReader("event: final\ndata: {\"done\":true}\n\n"),
		err:           errors.New("unexpected EOF"),
	}
	result, err := run(t, body, nil, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result["done"] != true {
		t.Fatalf("result: got %v", result)
	}
}

func TestRunCancelledBeforeNextRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	body := newBlockingBody("event: status\ndata: {\"pct\":1}\n\n")

	_, err := Run(ctx, body, func(Payload) error {
		cancel()
		return nil
	}, Options{Logger: discardLogger()})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("got %v, want Cancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("context error not wrapped: %v", err)
	}
	if !body.isClosed() {
		t.Fatal("body not released on cancel")
	}
}

func TestRunCancelledDuringRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	body := newBlockingBody("event: status\ndata: {\"pct\":1}\n\n")
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := Run(ctx, body, nil, Options{Logger: discardLogger()})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("got %v, want Cancelled", err)
	}
	if !body.isClosed() {
		t.Fatal("body not closed to unblock read")
	}
}

func TestRunStall(t *testing.T) {
	body := newBlockingBody("event: status\ndata: {\"pct\":1}\n\n")

	_, err := run(t, body, nil, Options{StallTimeout: 30 * time.Millisecond})
	if !errors.Is(err, ErrTransport) || !errors.Is(err, ErrStalled) {
		t.Fatalf("got %v, want stalled TransportError", err)
	}
	if !body.isClosed() {
		t.Fatal("body not closed after stall")
	}
}

func TestRunSmallReadSize(t *testing.T) {
	body := newChunkedReader("event: status\ndata: {\"file\":\"été.pdf\"}\n\nevent: final\ndata: {\"n\":1}\n\n")
	rec := &recorder{}

	result, err := run(t, body, rec, Options{ReadSize: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.payloads) != 1 || rec.payloads[0].String("file") != "été.pdf" {
		t.Fatalf("progress: got %v", rec.payloads)
	}
	if result.Int("n") != 1 {
		t.Fatalf("result: got %v", result)
	}
}

type outcome struct {
	progress []Payload
	result   Payload
	kind     ErrorKind
	failed   bool
}

func runChunks(chunks []string) outcome {
	rec := &recorder{}
	result, err := Run(context.Background(), newChunkedReader(chunks...), rec.onProgress, Options{Logger: discardLogger()})
	out := outcome{progress: rec.payloads, result: result}
	if err != nil {
		out.kind, _ = KindOf(err)
		out.failed = true
	}
	return out
}

func TestRunChunkingInvariance(t *testing.T) {
	inputs := []string{
		"event: status\ndata: {\"file\":\"naïve.txt\",\"pct\":10}\n\n" +
			"event: status\ndata: {oops}\n\n\n\n" +
			"event: status\ndata: {\"file\":\"日本.pdf\",\"pct\":50}\n\n" +
			"event: final\ndata: {\"message\":\"Processed 2 files 😀\"}\n\n" +
			"event: status\ndata: {\"pct\":100}\n\n",
		"event: status\ndata: {\"pct\":1}\n\nevent: error\ndata: {\"message\":\"disque plein €\"}\n\nevent: final\ndata: {}\n\n",
		"event: status\ndata: {\"pct\":1}\n\nevent: fin",
	}

	for _, input := range inputs {
		data := []byte(input)
		want := runChunks([]string{input})
		rapid.Check(t, func(t *rapid.T) {
			cuts := rapid.SliceOfN(rapid.IntRange(0, len(data)), 0, 12).Draw(t, "cuts")
			got := runChunks(splitAt(data, cuts))
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("chunks %q: got %+v, want %+v", splitAt(data, cuts), got, want)
			}
		})
	}
}

func TestReaderEvents(t *testing.T) {
	body := newChunkedReader("event: status\ndata: {\"pct\":5}\n\n\n\nevent: final\ndata: {}\n\nevent: sta")
	reader := NewReader(body, ReaderOptions{})
	defer reader.Close()
	ctx := context.Background()

	evt, err := reader.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt.Kind != EventStatus || evt.Payload.Int("pct") != 5 {
		t.Errorf("first event: got %+v", evt)
	}

	evt, err = reader.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt.Kind != EventFinal {
		t.Errorf("second event: got %s", evt.Kind)
	}

	_, err = reader.Next(ctx)
	if err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if reader.Pending() != "event: sta" {
		t.Errorf("Pending: got %q", reader.Pending())
	}
}
