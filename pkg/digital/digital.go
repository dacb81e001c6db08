// Package digital models two-valued logic lines and the capabilities a
// debounced input needs from them: level reads, edge notification and an
// ISR-safe edge flag.
package digital

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWatcherBusy is returned by Watch while another callback holds the
// line's single watcher slot.
var ErrWatcherBusy = errors.New("digital: watcher already attached")

// Signal is the logical level of a digital line.
type Signal int

const (
	Low Signal = iota
	High
)

// Inverse returns the opposite level. For both defined levels
// s.Inverse().Inverse() == s.
func (s Signal) Inverse() Signal {
	if s == High {
		return Low
	}
	return High
}

// Valid reports whether s is one of the two defined levels.
func (s Signal) Valid() bool {
	return s == High || s == Low
}

func (s Signal) String() string {
	switch s {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// ParseSignal maps a configuration string to a level.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "1":
		return High, nil
	case "low", "0":
		return Low, nil
	}
	return Low, fmt.Errorf("digital: unknown signal %q", s)
}

// Pull selects the bias resistor a driver applies to its input.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return fmt.Sprintf("Pull(%d)", int(p))
	}
}

// ParsePull maps a configuration string to a bias setting.
func ParsePull(s string) (Pull, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return PullNone, nil
	case "up":
		return PullUp, nil
	case "down":
		return PullDown, nil
	}
	return PullNone, fmt.Errorf("digital: unknown pull %q", s)
}

// Edge selects which level transitions a Watcher reports.
type Edge int

const (
	Rising Edge = iota + 1
	Falling
	Both
)

func (e Edge) String() string {
	switch e {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Edge(%d)", int(e))
	}
}

// Line is a readable digital input.
//
// Read never suspends and never fails. Drivers that can encounter I/O
// errors absorb them and keep returning the last good level.
type Line interface {
	Read() Signal
}

// LineFunc adapts a function to the Line interface.
type LineFunc func() Signal

func (f LineFunc) Read() Signal { return f() }

// Watcher is a Line that can announce edges through a callback.
//
// On platforms with real pin interrupts the callback runs in interrupt
// context: it must not block, allocate or take locks. Setting a Flag is the
// intended body. The returned cancel function detaches the callback.
// Implementations carry a single watcher slot; Watch fails while the slot
// is taken.
type Watcher interface {
	Line
	Watch(edge Edge, fn func()) (cancel func(), err error)
}

var _ Line = (LineFunc)(nil)
