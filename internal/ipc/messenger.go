package ipc

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Messenger delivers a chosen value or the cancellation token.
type Messenger interface {
	Send(text string) error
}

// Stdout writes each message as one line to an output stream.
type Stdout struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdout returns a messenger writing to w, or os.Stdout when w is nil.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{w: w}
}

func (s *Stdout) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, text); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
