//go:build linux

// Package rpigpio reads push buttons through the BCM283x memory window used
// by go-rpio. The GPIO memory is mapped once on first use and stays mapped
// for the life of the process.
package rpigpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// detectPoll is how often the watcher goroutine checks the latched edge
// detect bit.
const detectPoll = time.Millisecond

var (
	openOnce sync.Once
	openErr  error
)

func ensureOpen() error {
	openOnce.Do(func() {
		openErr = rpio.Open()
	})
	return openErr
}

// Line is a single BCM-numbered input pin.
type Line struct {
	pin rpio.Pin

	mu   sync.Mutex
	stop chan struct{}
}

var _ digital.Watcher = (*Line)(nil)

// New configures the BCM-numbered pin as an input with the given bias.
func New(bcm int, pull digital.Pull) (*Line, error) {
	if err := ensureOpen(); err != nil {
		return nil, fmt.Errorf("rpigpio: open gpio mem: %w", err)
	}

	pin := rpio.Pin(bcm)
	pin.Input()
	switch pull {
	case digital.PullUp:
		pin.PullUp()
	case digital.PullDown:
		pin.PullDown()
	default:
		pin.PullOff()
	}

	return &Line{pin: pin}, nil
}

// Read samples the pin.
func (l *Line) Read() digital.Signal {
	if l.pin.Read() == rpio.High {
		return digital.High
	}
	return digital.Low
}

// Watch latches hardware edge detection on the pin and polls the detect bit
// from a goroutine. The single watcher slot must be free.
func (l *Line) Watch(edge digital.Edge, fn func()) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stop != nil {
		return nil, digital.ErrWatcherBusy
	}

	switch edge {
	case digital.Rising:
		l.pin.Detect(rpio.RiseEdge)
	case digital.Falling:
		l.pin.Detect(rpio.FallEdge)
	default:
		l.pin.Detect(rpio.AnyEdge)
	}

	stop := make(chan struct{})
	l.stop = stop
	go l.pump(stop, fn)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.stop != stop {
			return
		}
		close(stop)
		l.pin.Detect(rpio.NoEdge)
		l.stop = nil
	}, nil
}

func (l *Line) pump(stop chan struct{}, fn func()) {
	t := time.NewTicker(detectPoll)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if l.pin.EdgeDetected() {
				fn()
			}
		}
	}
}
