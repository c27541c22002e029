package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter keeps a single spinner line up to date on w. It is used
// while config and paths load and, when the table is off, for the whole
// generate run.
type StatusWriter struct {
	w       io.Writer
	mu      sync.Mutex
	message string
	since   time.Time
	frame   int
	done    chan struct{}
	stopped bool
}

// NewStatusWriter starts redrawing the status line every 100ms.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{
		w:     w,
		since: time.Now(),
		done:  make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update shows msg and restarts the elapsed timer.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.since = time.Now()
	sw.mu.Unlock()
}

// Set shows msg and keeps the elapsed timer running.
func (sw *StatusWriter) Set(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.mu.Unlock()
}

// Stop erases the line. Calling it more than once is fine.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()
	close(sw.done)
	fmt.Fprint(sw.w, clearLine)
}

const clearLine = "\r\033[K"

// render returns the next frame and advances the spinner.
func (sw *StatusWriter) render(now time.Time) string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	spinner := spinnerFrames[sw.frame%len(spinnerFrames)]
	sw.frame++
	return fmt.Sprintf("%s%s %s (%s)", clearLine, spinner, sw.message, formatElapsed(now.Sub(sw.since)))
}

func (sw *StatusWriter) loop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sw.done:
			return
		case now := <-ticker.C:
			fmt.Fprint(sw.w, sw.render(now))
		}
	}
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
