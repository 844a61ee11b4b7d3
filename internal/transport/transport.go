// Package transport provides byte-oriented, non-blocking duplex channels to the
// RFID reader.
package transport

import (
	"fmt"

	"github.com/Veraticus/rfidgate/internal/common"
)

// Transport is a non-blocking duplex byte channel.
type Transport interface {
	// Open connects to the named endpoint, closing any previous connection.
	Open(name string) error
	Close() error
	Send(p []byte) (int, error)
	// TryReceive reads whatever is available without waiting. It returns 0
	// when nothing is available.
	TryReceive(buf []byte) (int, error)
	IsOpen() bool
}

// Error is a failure at the transport boundary. It matches common.ErrTransport
// with errors.Is.
type Error struct {
	Err  error
	Op   string
	Port string
}

func (e *Error) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s %s: %v", e.Op, e.Port, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, common.ErrTransport) match any transport error.
func (e *Error) Is(target error) bool {
	return target == common.ErrTransport
}

func opError(op, port string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Port: port, Err: err}
}
