package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a braille frame next to a message while an indeterminate
// operation runs.
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	noColor  bool
	done     chan struct{}

	mu      sync.RWMutex // guards message and active
	message string
	active  bool
}

// SpinnerOptions configures spinner behavior.
type SpinnerOptions struct {
	Message  string
	NoColor  bool
	Interval time.Duration // default 100ms
}

// NewSpinner creates a spinner. Call Start to begin animating.
func NewSpinner(w io.Writer, opts SpinnerOptions) *Spinner {
	s := &Spinner{
		writer:   w,
		interval: opts.Interval,
		noColor:  opts.NoColor,
		done:     make(chan struct{}),
		message:  opts.Message,
	}
	if s.interval == 0 {
		s.interval = 100 * time.Millisecond
	}
	return s
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	go s.animate()
}

// Stop ends the animation and clears the line. Stopping a stopped spinner is
// a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	// Handshake with animate so no frame lands after the clear.
	s.done <- struct{}{}
	fmt.Fprint(s.writer, "\r\033[K")
}

// Success stops the spinner and writes a checked completion line.
func (s *Spinner) Success(message string) {
	s.Stop()
	tint(s.noColor, color.FgGreen, color.Bold).Fprintf(s.writer, "✓ %s\n", message)
}

// Error stops the spinner and writes a failure line.
func (s *Spinner) Error(message string) {
	s.Stop()
	tint(s.noColor, color.FgRed, color.Bold).Fprintf(s.writer, "❌ %s\n", message)
}

// UpdateMessage swaps the message shown next to the frames.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	style := tint(s.noColor, color.FgCyan)
	for frame := 0; ; frame++ {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.RLock()
			msg := s.message
			s.mu.RUnlock()
			style.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], msg)
		}
	}
}
