//go:build !linux

// Package cdev reads push buttons through the Linux GPIO character device.
package cdev

import (
	"errors"

	"github.com/Chen-HR/tactile/pkg/digital"
)

// Line is not available on non-Linux platforms.
type Line struct{}

var _ digital.Watcher = (*Line)(nil)

// New returns an error on non-Linux platforms.
func New(chip string, offset int, pull digital.Pull) (*Line, error) {
	return nil, errors.New("cdev: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (l *Line) Read() digital.Signal {
	return digital.Low
}

// Watch is not implemented on non-Linux platforms.
func (l *Line) Watch(edge digital.Edge, fn func()) (func(), error) {
	return nil, errors.New("cdev: not supported")
}

// Close is not implemented on non-Linux platforms.
func (l *Line) Close() error {
	return nil
}
