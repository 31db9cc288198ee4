package core

import "errors"

var (
	// ErrBackpressure is returned by TrySend when the connection's buffer is full.
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is a raw text payload written to a connection.
type Frame []byte

// SessionID identifies one live transport connection.
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
