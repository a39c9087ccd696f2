package pipe

import "errors"

var (
	// Queue errors
	ErrQueueClosed  = errors.New("command queue closed")
	ErrSenderClosed = errors.New("sender closed")
	ErrQueueFull    = errors.New("command queue full")
	ErrNilCommand   = errors.New("nil command")

	// Actor errors
	ErrAlreadyRunning  = errors.New("connection already running")
	ErrCommandPanicked = errors.New("command panicked")
)
