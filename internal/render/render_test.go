package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/n0madic/go-chorus/internal/types"
)

func TestBar(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{0, "[" + strings.Repeat("░", 30) + "]"},
		{100, "[" + strings.Repeat("█", 30) + "]"},
		{150, "[" + strings.Repeat("█", 30) + "]"},
		{-5, "[" + strings.Repeat("░", 30) + "]"},
		{50, "[" + strings.Repeat("█", 15) + strings.Repeat("░", 15) + "]"},
		// 10.2 segments stays at 10 full; 10.8 gets a partial eleventh.
		{34, "[" + strings.Repeat("█", 10) + strings.Repeat("░", 20) + "]"},
		{36, "[" + strings.Repeat("█", 10) + "▓" + strings.Repeat("░", 19) + "]"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Bar(tc.pct), "pct=%v", tc.pct)
	}
}

func TestBarWidthIsFixed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pct := rapid.Float64Range(-50, 200).Draw(t, "pct")
		if got := utf8.RuneCountInString(Bar(pct)); got != barSegments+2 {
			t.Fatalf("Bar(%v) has %d runes", pct, got)
		}
	})
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "processing", Describe(types.UploadProgress{}))
	assert.Equal(t, "b.txt (2/3) embedding", Describe(types.UploadProgress{File: "b.txt", Index: 2, Total: 3, Stage: "embedding"}))
	assert.Equal(t, "(#4)", Describe(types.UploadProgress{Index: 4}))
}

func TestProgressLinePerUpdateWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	require.NoError(t, p.Update(types.UploadProgress{File: "a.txt", Index: 1, Total: 2, Percent: 50}))
	require.NoError(t, p.Update(types.UploadProgress{File: "b.txt", Index: 2, Total: 2, Percent: 100}))
	p.Finish()
	require.NoError(t, p.Update(types.UploadProgress{File: "late"}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " 50.0% a.txt (1/2)")
	assert.Contains(t, lines[1], "100.0% b.txt (2/2)")
	assert.NotContains(t, buf.String(), "\r")
}

func TestProgressInlineRedraw(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	p.inline = true

	require.NoError(t, p.Update(types.UploadProgress{File: "a-long-name.txt", Percent: 10}))
	require.NoError(t, p.Update(types.UploadProgress{File: "b", Percent: 20}))
	p.Finish()

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\r"))
	assert.True(t, strings.HasSuffix(out, "\n"))
	// The shorter second line is padded over the first.
	frames := strings.Split(strings.TrimSuffix(out, "\n"), "\r")
	assert.Equal(t, utf8.RuneCountInString(frames[1]), utf8.RuneCountInString(frames[2]))
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	require.NoError(t, p.Summary(&types.UploadResult{
		Message: "Processed 1 files, 1 failed",
		Files:   []types.UploadedFile{{ID: 7, Filename: "a.txt", Chunks: 3, Size: 2048}},
		Errors:  []types.UploadFailure{{Filename: "b.bin", Error: "unsupported"}},
	}))
	out := buf.String()
	assert.Contains(t, out, "Processed 1 files, 1 failed\n")
	assert.Contains(t, out, "✓ a.txt (id 7, 3 chunks, 2.0 KiB)")
	assert.Contains(t, out, "✗ b.bin: unsupported")
}

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	NewProgress(&buf).Failure(errors.New("boom"))
	assert.Equal(t, "upload failed: boom\n", buf.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "3.0 MiB", FormatBytes(3<<20))
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bots(&buf, []types.Bot{
		{ID: 1, Name: "helper", DatasetID: types.IntPtr(4), RAGResultsCount: 5},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "NAME", "DATASET", "MODEL", "RAG", "CREATED"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "helper", "4", "-", "5"}, strings.Fields(lines[1]))

	buf.Reset()
	require.NoError(t, Datasets(&buf, []types.Dataset{{ID: 2, Name: "docs", FileCount: 3}}))
	assert.Contains(t, buf.String(), "docs")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"id": 1}))
	assert.Equal(t, "{\n  \"id\": 1\n}\n", buf.String())
}
