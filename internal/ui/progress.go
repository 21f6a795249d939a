package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

const progressRefresh = 100 * time.Millisecond

// Progress draws a single line transfer bar. With an unknown total it shows
// the byte count only.
type Progress struct {
	w     io.Writer
	label string
	bar   progress.Model

	mu       sync.Mutex
	last     time.Time
	finished bool
}

func NewProgress(w io.Writer, label string) *Progress {
	return &Progress{
		w:     w,
		label: label,
		bar: progress.New(
			progress.WithGradient(string(C.Primary300.Dark), string(C.Primary500.Dark)),
			progress.WithWidth(30),
		),
	}
}

// Update redraws the bar, at most every progressRefresh unless read has
// reached total.
func (p *Progress) Update(read, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	done := total > 0 && read >= total
	if !done && time.Since(p.last) < progressRefresh {
		return
	}
	p.last = time.Now()
	_, _ = fmt.Fprint(p.w, "\r\x1b[2K"+p.render(read, total))
}

func (p *Progress) render(read, total int64) string {
	if total <= 0 {
		return fmt.Sprintf("%s %s", p.label, Muted(FormatBytes(read)))
	}
	pct := float64(read) / float64(total)
	return fmt.Sprintf("%s %s %s", p.label, p.bar.ViewAs(min(pct, 1)),
		Muted(fmt.Sprintf("%s/%s", FormatBytes(read), FormatBytes(total))))
}

// Done ends the line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finished {
		p.finished = true
		_, _ = fmt.Fprintln(p.w)
	}
}
