// Package serialline reads a push button wired to a serial port's modem
// status pins. A switch strapped from DTR to one of CTS, DSR, RI or DCD
// works as a digital input on machines with no GPIO header at all; the
// driver asserts DTR and RTS so such a loop is powered.
package serialline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// DefaultPoll is the status poll period used when none is given.
const DefaultPoll = time.Millisecond

// Bit names one of the four modem status inputs.
type Bit string

const (
	CTS Bit = "cts"
	DSR Bit = "dsr"
	RI  Bit = "ri"
	DCD Bit = "dcd"
)

func (b Bit) valid() bool {
	switch b {
	case CTS, DSR, RI, DCD:
		return true
	}
	return false
}

// ParseBit maps a configuration string to a status bit.
func ParseBit(s string) (Bit, error) {
	b := Bit(strings.ToLower(strings.TrimSpace(s)))
	if !b.valid() {
		return "", fmt.Errorf("serialline: unknown status bit %q", s)
	}
	return b, nil
}

// Ports returns the serial ports available on the system.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialline: list ports: %w", err)
	}
	return ports, nil
}

// Line is one modem status bit of an open serial port, polled for edges.
type Line struct {
	port serial.Port
	bit  Bit
	poll time.Duration
	done chan struct{}

	mu   sync.Mutex
	last digital.Signal
	edge digital.Edge
	fn   func()
	gen  uint64
}

var _ digital.Watcher = (*Line)(nil)

// New opens the port and starts polling the chosen status bit.
func New(portName string, bit Bit, poll time.Duration) (*Line, error) {
	if !bit.valid() {
		return nil, fmt.Errorf("serialline: unknown status bit %q", bit)
	}
	if poll <= 0 {
		poll = DefaultPoll
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: 9600})
	if err != nil {
		return nil, fmt.Errorf("serialline: open port %s: %w", portName, err)
	}
	if err := port.SetDTR(true); err != nil {
		port.Close()
		return nil, fmt.Errorf("serialline: assert DTR on %s: %w", portName, err)
	}
	if err := port.SetRTS(true); err != nil {
		port.Close()
		return nil, fmt.Errorf("serialline: assert RTS on %s: %w", portName, err)
	}

	l := &Line{
		port: port,
		bit:  bit,
		poll: poll,
		done: make(chan struct{}),
	}
	if s, err := l.sample(); err == nil {
		l.last = s
	}
	go l.pump()

	return l, nil
}

// Read samples the status bit. I/O errors are absorbed: the last good
// level is returned instead.
func (l *Line) Read() digital.Signal {
	s, err := l.sample()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		return l.last
	}
	l.last = s
	return s
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

// Close stops polling and closes the port.
func (l *Line) Close() error {
	close(l.done)
	if err := l.port.Close(); err != nil {
		return fmt.Errorf("serialline: close port: %w", err)
	}
	return nil
}

func (l *Line) sample() (digital.Signal, error) {
	bits, err := l.port.GetModemStatusBits()
	if err != nil {
		return digital.Low, err
	}

	var on bool
	switch l.bit {
	case CTS:
		on = bits.CTS
	case DSR:
		on = bits.DSR
	case RI:
		on = bits.RI
	case DCD:
		on = bits.DCD
	}
	if on {
		return digital.High, nil
	}
	return digital.Low, nil
}

// pump polls the status bit and turns level changes into watcher callbacks.
func (l *Line) pump() {
	t := time.NewTicker(l.poll)
	defer t.Stop()

	prev, err := l.sample()
	if err != nil {
		prev = digital.Low
	}
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			s, err := l.sample()
			if err != nil {
				continue
			}

			l.mu.Lock()
			l.last = s
			fn := l.fn
			edge := l.edge
			l.mu.Unlock()

			if s == prev {
				continue
			}
			prev = s

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
}
