// Package progress shows a spinner with the entry being copied.
package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/marmos91/smbcopy/internal/logger"
)

// Spinner reports copy progress on a terminal. A disabled Spinner (not a
// terminal, or verbose logging) accepts every call and prints nothing.
type Spinner struct {
	mu      sync.Mutex
	s       *spinner.Spinner
	running bool
}

// New creates a Spinner writing to w. It is enabled only when enabled is set
// and w is a terminal.
func New(w io.Writer, enabled bool) *Spinner {
	if !enabled || !isTerminal(w) {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	_ = s.Color("magenta")
	return &Spinner{s: s}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && logger.IsTerminal(f.Fd())
}

// Observer returns a per-entry callback that starts the spinner with label
// on its first call and then shows each entry. Output printed before the
// first entry is never interleaved with the spinner line.
func (p *Spinner) Observer(label string) func(rel string) {
	return func(rel string) {
		if p.s == nil {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.running {
			p.s.Start()
			p.running = true
		}
		p.s.Lock()
		p.s.Suffix = " " + label + " " + rel
		p.s.Unlock()
	}
}

// Stop clears the spinner line.
func (p *Spinner) Stop() {
	if p.s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.s.Stop()
		p.running = false
	}
}
