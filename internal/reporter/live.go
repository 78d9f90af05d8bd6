package reporter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// LiveReporter provides a one-line live-updating trial counter during a
// batch, for terminals where the full TUI is unwanted.
type LiveReporter struct {
	w           io.Writer
	color       bool
	getProgress func() Progress
	stop        chan struct{}
	done        chan struct{}
	wroteLine   bool
	frame       int
	mu          sync.Mutex
}

// NewLiveReporter creates a live reporter that polls progress via
// getProgress.
func NewLiveReporter(w io.Writer, color bool, getProgress func() Progress) *LiveReporter {
	return &LiveReporter{
		w:           w,
		color:       color,
		getProgress: getProgress,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start begins the periodic refresh loop.
func (lr *LiveReporter) Start() {
	go lr.loop()
}

// Stop halts the refresh loop and clears the live line.
func (lr *LiveReporter) Stop() {
	close(lr.stop)
	<-lr.done
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.wroteLine {
		fmt.Fprint(lr.w, "\r\033[K")
	}
}

func (lr *LiveReporter) loop() {
	defer close(lr.done)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-lr.stop:
			return
		case <-ticker.C:
			lr.render()
		}
	}
}

func (lr *LiveReporter) render() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	p := lr.getProgress()
	spinner := spinnerFrames[lr.frame%len(spinnerFrames)]
	line := fmt.Sprintf("%s %d/%d trials", spinner, p.Done, p.Total)
	if p.Failed > 0 {
		failed := fmt.Sprintf("%d failed", p.Failed)
		if lr.color {
			failed = colorYellow + failed + colorReset
		}
		line += ", " + failed
	}

	fmt.Fprintf(lr.w, "\r\033[K%s", line)
	lr.wroteLine = true
	lr.frame++
}
