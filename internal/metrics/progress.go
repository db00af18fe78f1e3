package metrics

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Progress periodically redraws a one-line summary of a Registry's
// current state to an io.Writer (stderr by default), clearing and
// rewriting the same line with a carriage-return-style escape rather
// than appending a new line per tick.
type Progress struct {
	registry  *Registry
	startTime time.Time
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
}

// NewProgress builds a Progress over registry. When quiet is true, all
// methods become no-ops.
func NewProgress(registry *Registry, quiet bool) *Progress {
	return &Progress{
		registry: registry,
		quiet:    quiet,
		output:   os.Stderr,
	}
}

// SetOutput overrides the writer progress lines are drawn to.
func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// Start begins the redraw ticker.
func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(time.Second)
	go p.run()
}

func (p *Progress) run() {
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	rep := p.registry.Report()
	elapsed := time.Since(p.startTime).Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60

	var totalOps int
	for _, s := range rep.Timers {
		totalOps += s.Count
	}

	p.mu.Lock()
	fmt.Fprintf(p.output, "\r\033[K[%02d:%02d] operations: %d", mins, secs, totalOps)
	p.mu.Unlock()
}

// Stop halts the redraw ticker and clears the current line.
func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprint(p.output, "\r\033[K")
	p.mu.Unlock()
}

// Printf prints a one-line status message, clearing the live redraw
// line first so the two don't visually collide.
func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\r\033[K"+format+"\n", args...)
	p.mu.Unlock()
}
