// Package periphio reads push buttons through the periph.io host drivers.
// Pins are addressed by gpioreg names, e.g. "GPIO22".
package periphio

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// edgePoll bounds each WaitForEdge call so the pump can notice Close.
const edgePoll = 100 * time.Millisecond

// Line is a periph.io input pin with an edge pump goroutine behind Watch.
type Line struct {
	pin  gpio.PinIO
	done chan struct{}

	mu   sync.Mutex
	edge digital.Edge
	fn   func()
	gen  uint64
}

var _ digital.Watcher = (*Line)(nil)

// New initialises the periph host, looks up the named pin and configures it
// as an input with the given bias.
func New(name string, pull digital.Pull) (*Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphio: host init: %w", err)
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("periphio: no pin named %q", name)
	}

	bias := gpio.Float
	switch pull {
	case digital.PullUp:
		bias = gpio.PullUp
	case digital.PullDown:
		bias = gpio.PullDown
	}
	if err := pin.In(bias, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("periphio: configure %s: %w", name, err)
	}

	l := &Line{pin: pin, done: make(chan struct{})}
	go l.pump()
	return l, nil
}

// Read samples the pin.
func (l *Line) Read() digital.Signal {
	return level(l.pin.Read())
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

// Close stops the edge pump and halts the pin.
func (l *Line) Close() error {
	close(l.done)
	if err := l.pin.Halt(); err != nil {
		return fmt.Errorf("periphio: halt %s: %w", l.pin.Name(), err)
	}
	return nil
}

// pump turns WaitForEdge wakeups into watcher callbacks. The level read
// after the wakeup classifies the edge direction.
func (l *Line) pump() {
	for {
		select {
		case <-l.done:
			return
		default:
		}

		if !l.pin.WaitForEdge(edgePoll) {
			continue
		}
		s := level(l.pin.Read())

		l.mu.Lock()
		fn := l.fn
		edge := l.edge
		l.mu.Unlock()

		if fn == nil {
			continue
		}
		switch edge {
		case digital.Rising:
			if s != digital.High {
				continue
			}
		case digital.Falling:
			if s != digital.Low {
				continue
			}
		}
		fn()
	}
}

func level(v gpio.Level) digital.Signal {
	if v == gpio.High {
		return digital.High
	}
	return digital.Low
}
