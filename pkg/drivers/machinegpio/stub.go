//go:build !tinygo

// Package machinegpio adapts a microcontroller pin to the line interfaces.
package machinegpio

import (
	"errors"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// Line is only available when built with TinyGo.
type Line struct{}

var _ digital.Watcher = (*Line)(nil)

// New returns an error when not built with TinyGo.
func New(pin int, pull digital.Pull) (*Line, error) {
	return nil, errors.New("machinegpio: requires a tinygo build")
}

// Read is not implemented without TinyGo.
func (l *Line) Read() digital.Signal {
	return digital.Low
}

// Watch is not implemented without TinyGo.
func (l *Line) Watch(edge digital.Edge, fn func()) (func(), error) {
	return nil, errors.New("machinegpio: requires a tinygo build")
}
