//go:build tinygo

// Package machinegpio adapts a microcontroller pin to the line interfaces.
// Watch hooks the pin's hardware interrupt, so callbacks run in interrupt
// context and must only do interrupt-safe work such as setting a flag.
package machinegpio

import (
	"fmt"
	"machine"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// Line is a configured microcontroller input pin.
type Line struct {
	pin      machine.Pin
	watching bool
}

var _ digital.Watcher = (*Line)(nil)

// New configures the pin as an input with the given bias.
func New(pin machine.Pin, pull digital.Pull) (*Line, error) {
	mode := machine.PinInput
	switch pull {
	case digital.PullUp:
		mode = machine.PinInputPullup
	case digital.PullDown:
		mode = machine.PinInputPulldown
	}
	pin.Configure(machine.PinConfig{Mode: mode})

	return &Line{pin: pin}, nil
}

// Read samples the pin.
func (l *Line) Read() digital.Signal {
	if l.pin.Get() {
		return digital.High
	}
	return digital.Low
}

// Watch enables the pin interrupt with fn as its handler. fn runs in
// interrupt context.
func (l *Line) Watch(edge digital.Edge, fn func()) (func(), error) {
	if l.watching {
		return nil, digital.ErrWatcherBusy
	}

	change := machine.PinToggle
	switch edge {
	case digital.Rising:
		change = machine.PinRising
	case digital.Falling:
		change = machine.PinFalling
	}

	if err := l.pin.SetInterrupt(change, func(machine.Pin) { fn() }); err != nil {
		return nil, fmt.Errorf("machinegpio: set interrupt: %w", err)
	}
	l.watching = true

	return func() {
		l.pin.SetInterrupt(change, nil)
		l.watching = false
	}, nil
}
