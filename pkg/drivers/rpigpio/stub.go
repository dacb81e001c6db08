//go:build !linux

// Package rpigpio reads push buttons through the BCM283x memory window used
// by go-rpio.
package rpigpio

import (
	"errors"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// Line is not available on non-Linux platforms.
type Line struct{}

var _ digital.Watcher = (*Line)(nil)

// New returns an error on non-Linux platforms.
func New(bcm int, pull digital.Pull) (*Line, error) {
	return nil, errors.New("rpigpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (l *Line) Read() digital.Signal {
	return digital.Low
}

// Watch is not implemented on non-Linux platforms.
func (l *Line) Watch(edge digital.Edge, fn func()) (func(), error) {
	return nil, errors.New("rpigpio: not supported")
}
