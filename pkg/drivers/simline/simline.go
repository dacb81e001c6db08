// Package simline provides a simulated push button line for testing and
// development. Transitions replay contact chatter: the line flips between
// the old and new level a configured number of times before settling, and
// every flip is visible to both readers and edge watchers.
package simline

import (
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/Chen-HR/tactile/pkg/config"
	"github.com/Chen-HR/tactile/pkg/digital"
)

// Line simulates a push button input with contact chatter.
type Line struct {
	released digital.Signal
	pressed  digital.Signal
	bounces  int
	spacing  time.Duration

	transMu sync.Mutex // serializes Press/Release/Tap

	mu    sync.Mutex
	level digital.Signal
	edge  digital.Edge
	fn    func()
	gen   uint64
}

var _ digital.Watcher = (*Line)(nil)

// New creates a simulated line idling at the released level.
func New(released digital.Signal, cfg *config.SimConfig) (*Line, error) {
	if !released.Valid() {
		return nil, fmt.Errorf("simline: invalid released level %v", released)
	}
	if cfg == nil {
		cfg = &config.SimConfig{
			Bounces: 8,
			Spacing: 2 * time.Millisecond,
		}
	}

	return &Line{
		released: released,
		pressed:  released.Inverse(),
		bounces:  cfg.Bounces,
		spacing:  cfg.Spacing,
		level:    released,
	}, nil
}

// Read returns the instantaneous level, which flips rapidly while a
// transition is chattering.
func (l *Line) Read() digital.Signal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
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

// Press chatters the line onto the pressed level. It blocks until the line
// settles; run it from a goroutine when the caller must not wait.
func (l *Line) Press() { l.settle(l.pressed) }

// Release chatters the line back onto the released level.
func (l *Line) Release() { l.settle(l.released) }

// Tap presses, holds for the given duration, then releases.
func (l *Line) Tap(hold time.Duration) {
	l.Press()
	time.Sleep(hold)
	l.Release()
}

func (l *Line) settle(to digital.Signal) {
	l.transMu.Lock()
	defer l.transMu.Unlock()

	if l.Read() == to {
		return
	}
	from := to.Inverse()
	for i := 0; i < l.bounces; i++ {
		if i%2 == 0 {
			l.set(to)
		} else {
			l.set(from)
		}
		time.Sleep(l.chatterDelay(i))
	}
	l.set(to)
}

// set flips the level and notifies the watcher when the flip matches its
// edge filter. The callback runs outside the lock.
func (l *Line) set(s digital.Signal) {
	l.mu.Lock()
	prev := l.level
	l.level = s
	fn := l.fn
	edge := l.edge
	l.mu.Unlock()

	if prev == s || fn == nil {
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

// chatterDelay spaces bounce i. The golden-angle stride keeps successive
// delays from repeating while staying deterministic across runs.
func (l *Line) chatterDelay(i int) time.Duration {
	f := math32.Abs(math32.Sin(float32(i) * 2.399963))
	return l.spacing + time.Duration(f*float32(l.spacing))
}
