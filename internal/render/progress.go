// Package render draws upload progress and command results for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/n0madic/go-chorus/internal/types"
)

const barSegments = 30

var (
	doneColor   = lipgloss.Color("#10B981") // Green
	activeColor = lipgloss.Color("#3B82F6") // Blue
	startColor  = lipgloss.Color("#F59E0B") // Amber
	errorColor  = lipgloss.Color("#EF4444") // Red
	mutedColor  = lipgloss.Color("#6B7280") // Gray
)

// Bar renders pct as a fixed-width bar. A segment more than half covered is
// drawn with the partial glyph.
func Bar(pct float64) string {
	ratio := ClampPercent(pct) / 100
	filledExact := ratio * barSegments
	filled := int(filledExact)
	hasPartial := filledExact-float64(filled) > 0.5
	if hasPartial {
		filled++
	}
	if filled > barSegments {
		filled = barSegments
	}
	empty := barSegments - filled

	var b strings.Builder
	b.WriteByte('[')
	if hasPartial && filled > 0 {
		b.WriteString(strings.Repeat("█", filled-1))
		b.WriteString("▓")
	} else {
		b.WriteString(strings.Repeat("█", filled))
	}
	b.WriteString(strings.Repeat("░", empty))
	b.WriteByte(']')
	return b.String()
}

// ClampPercent limits v to [0, 100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func barColor(pct float64) lipgloss.Color {
	switch {
	case pct >= 100:
		return doneColor
	case pct >= 50:
		return activeColor
	default:
		return startColor
	}
}

// Describe returns the plain text part of a progress line, such as
// "b.txt (2/3) embedding".
func Describe(p types.UploadProgress) string {
	var parts []string
	if p.File != "" {
		parts = append(parts, p.File)
	}
	if p.Total > 0 {
		parts = append(parts, fmt.Sprintf("(%d/%d)", p.Index, p.Total))
	} else if p.Index > 0 {
		parts = append(parts, fmt.Sprintf("(#%d)", p.Index))
	}
	if p.Stage != "" {
		parts = append(parts, p.Stage)
	}
	if len(parts) == 0 {
		return "processing"
	}
	return strings.Join(parts, " ")
}

// Progress prints upload progress to a writer. On a terminal it redraws one
// line in place; otherwise it prints one line per update.
type Progress struct {
	mu       sync.Mutex
	w        io.Writer
	r        *lipgloss.Renderer
	inline   bool
	drawn    int
	finished bool
}

// NewProgress creates a Progress that writes to w.
func NewProgress(w io.Writer) *Progress {
	inline := false
	if f, ok := w.(*os.File); ok {
		inline = term.IsTerminal(int(f.Fd()))
	}
	return &Progress{w: w, r: lipgloss.NewRenderer(w), inline: inline}
}

// Line formats p with a colored bar.
func (p *Progress) Line(u types.UploadProgress) string {
	pct := ClampPercent(u.Percent)
	style := p.r.NewStyle().Foreground(barColor(pct))
	return fmt.Sprintf("%s %s %s",
		style.Render(Bar(pct)),
		style.Render(fmt.Sprintf("%5.1f%%", pct)),
		Describe(u),
	)
}

// Update draws u. It satisfies api.ProgressFunc so it can be passed straight
// to an upload.
func (p *Progress) Update(u types.UploadProgress) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return nil
	}
	line := p.Line(u)
	if !p.inline {
		_, err := fmt.Fprintln(p.w, line)
		return err
	}
	width := lipgloss.Width(line)
	pad := ""
	if p.drawn > width {
		pad = strings.Repeat(" ", p.drawn-width)
	}
	p.drawn = width
	_, err := fmt.Fprintf(p.w, "\r%s%s", line, pad)
	return err
}

// Finish ends the in-place line so later output starts on a fresh line.
// Further updates are ignored.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	if p.inline && p.drawn > 0 {
		fmt.Fprintln(p.w) //nolint:errcheck
	}
}

// Summary writes the outcome of a finished upload.
func (p *Progress) Summary(res *types.UploadResult) error {
	ok := p.r.NewStyle().Foreground(doneColor)
	bad := p.r.NewStyle().Foreground(errorColor)
	muted := p.r.NewStyle().Foreground(mutedColor)

	var b strings.Builder
	if res.Message != "" {
		b.WriteString(res.Message)
		b.WriteByte('\n')
	}
	for _, f := range res.Files {
		fmt.Fprintf(&b, "  %s %s %s\n",
			ok.Render("✓"),
			f.Filename,
			muted.Render(fmt.Sprintf("(id %d, %d chunks, %s)", f.ID, f.Chunks, FormatBytes(f.Size))),
		)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(&b, "  %s %s: %s\n", bad.Render("✗"), e.Filename, e.Error)
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Failure writes an error line in the error color.
func (p *Progress) Failure(err error) {
	p.Finish()
	style := p.r.NewStyle().Foreground(errorColor)
	fmt.Fprintln(p.w, style.Render("upload failed: "+err.Error())) //nolint:errcheck
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
