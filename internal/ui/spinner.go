package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner is a simple text-based spinner for non-TUI commands
type Spinner struct {
	w        io.Writer
	chars    []string
	delay    time.Duration
	suffix   string
	stopChan chan struct{}
	wg       sync.WaitGroup
	active   bool
	mu       sync.Mutex
}

// NewSpinner creates a spinner writing to w (usually stderr).
func NewSpinner(w io.Writer, suffix string) *Spinner {
	return &Spinner{
		w:      w,
		chars:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay:  100 * time.Millisecond,
		suffix: suffix,
	}
}

// Start starts the spinner in a background goroutine
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()
		for i := 0; ; i = (i + 1) % len(s.chars) {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%s %s", StylePrimary.Render(s.chars[i]), s.suffix)
			}
		}
	}()
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	fmt.Fprint(s.w, "\r\033[K")
}
