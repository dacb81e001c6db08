//go:build linux

// Package cdev reads push buttons through the Linux GPIO character device.
package cdev

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// Line is a single requested GPIO input line.
//
// The kernel delivers edge events from request time on; Watch only routes
// them to a callback, so attaching and detaching a watcher never touches
// the line request itself.
type Line struct {
	line *gpiocdev.Line

	mu   sync.Mutex
	last digital.Signal
	edge digital.Edge
	fn   func()
	gen  uint64
}

var _ digital.Watcher = (*Line)(nil)

// New requests the line at offset on the named chip, e.g. "gpiochip0".
func New(chip string, offset int, pull digital.Pull) (*Line, error) {
	l := &Line{}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(l.onEvent),
	}
	switch pull {
	case digital.PullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case digital.PullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	}

	line, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("cdev: request line %d on %s: %w", offset, chip, err)
	}
	l.line = line

	if v, err := line.Value(); err == nil {
		l.last = level(v)
	}
	return l, nil
}

// Read samples the line. I/O errors are absorbed: the last good level is
// returned instead.
func (l *Line) Read() digital.Signal {
	v, err := l.line.Value()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		return l.last
	}
	l.last = level(v)
	return l.last
}

// Watch attaches an edge callback. The single watcher slot must be free.
func (l *Line) Watch(edge digital.Edge, fn func()) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fn != nil {
		return nil, digital.ErrWatcherBusy
	}
	l.fn = fn
	l.edge = edge
	l.gen++

	gen := l.gen
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen == gen {
			l.fn = nil
		}
	}, nil
}

// Close releases the line request.
func (l *Line) Close() error {
	if err := l.line.Close(); err != nil {
		return fmt.Errorf("cdev: close line: %w", err)
	}
	return nil
}

// onEvent runs on the gpiocdev event goroutine for every edge the kernel
// reports. The event type carries the new level, so edges update the level
// cache even when reads are failing.
func (l *Line) onEvent(evt gpiocdev.LineEvent) {
	s := digital.Low
	if evt.Type == gpiocdev.LineEventRisingEdge {
		s = digital.High
	}

	l.mu.Lock()
	l.last = s
	fn := l.fn
	edge := l.edge
	l.mu.Unlock()

	if fn == nil {
		return
	}
	switch edge {
	case digital.Rising:
		if s != digital.High {
			return
		}
	case digital.Falling:
		if s != digital.Low {
			return
		}
	}
	fn()
}

func level(v int) digital.Signal {
	if v == 0 {
		return digital.Low
	}
	return digital.High
}
