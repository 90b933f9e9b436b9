// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var DefaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner redraws one status line until stopped. It is safe for concurrent
// use; workers may call Update while the spinner runs.
type Spinner struct {
	out        io.Writer
	frames     []string
	interval   time.Duration
	color      Colorizer
	frameColor string

	mu    sync.Mutex
	msg   string
	frame int
	quit  chan struct{}
	done  chan struct{}
}

type SpinnerOption func(*Spinner)

func WithFrames(frames []string) SpinnerOption {
	return func(s *Spinner) {
		if len(frames) > 0 {
			s.frames = frames
		}
	}
}

func WithInterval(d time.Duration) SpinnerOption {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithColor paints the frame glyph with a raw escape code.
func WithColor(c Colorizer, frameColor string) SpinnerOption {
	return func(s *Spinner) {
		s.color = c
		s.frameColor = frameColor
	}
}

func NewSpinner(out io.Writer, opts ...SpinnerOption) *Spinner {
	s := &Spinner{
		out:      out,
		frames:   DefaultFrames,
		interval: 120 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start shows msg and begins animating. Starting a running spinner only
// changes its message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if s.quit != nil {
		return
	}
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	go s.run(s.quit, s.done)
}

// Update replaces the message of a running spinner.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if s.quit != nil {
		s.drawLocked()
	}
}

// Stop halts the animation. With clear the line is erased, otherwise the
// last frame stays and the cursor moves to the next line.
func (s *Spinner) Stop(clear bool) {
	s.mu.Lock()
	quit, done := s.quit, s.done
	s.quit, s.done = nil, nil
	s.mu.Unlock()
	if quit == nil {
		return
	}
	close(quit)
	<-done

	if clear {
		fmt.Fprint(s.out, "\r\033[K")
	} else {
		fmt.Fprintln(s.out)
	}
}

func (s *Spinner) run(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(s.frames)
			s.drawLocked()
			s.mu.Unlock()
		case <-quit:
			return
		}
	}
}

func (s *Spinner) drawLocked() {
	line := s.color.Wrap(s.frameColor, s.frames[s.frame%len(s.frames)])
	if s.msg != "" {
		line += " " + s.msg
	}
	fmt.Fprintf(s.out, "\r\033[K%s", line)
}
