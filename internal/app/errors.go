package app

import (
	"errors"
	"fmt"
)

var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoBackend is returned when Run is called without a backend.
	ErrNoBackend = errors.New("no terminal backend configured")
)

// InitError wraps a component initialization failure.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
