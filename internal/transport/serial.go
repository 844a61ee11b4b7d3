package transport

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/Veraticus/rfidgate/internal/common"
)

// DefaultBaudRate matches the reader firmware.
const DefaultBaudRate = 9600

// DefaultReadTimeout bounds how long TryReceive may wait for the driver.
const DefaultReadTimeout = 10 * time.Millisecond

// OpenFunc opens a serial port. It exists so tests can replace the driver.
type OpenFunc func(name string, mode *serial.Mode) (serial.Port, error)

// Serial is a Transport over a local serial port.
type Serial struct {
	port        serial.Port
	open        OpenFunc
	name        string
	mode        serial.Mode
	readTimeout time.Duration
	mu          sync.Mutex
}

// SerialOption configures a Serial transport.
type SerialOption func(*Serial)

// WithBaudRate sets the line speed.
func WithBaudRate(baud int) SerialOption {
	return func(s *Serial) {
		s.mode.BaudRate = baud
	}
}

// WithReadTimeout sets the driver read timeout used to emulate non-blocking reads.
func WithReadTimeout(d time.Duration) SerialOption {
	return func(s *Serial) {
		s.readTimeout = d
	}
}

// WithOpenFunc replaces the port opener.
func WithOpenFunc(fn OpenFunc) SerialOption {
	return func(s *Serial) {
		s.open = fn
	}
}

// NewSerial creates a closed serial transport configured for 8N1 framing.
func NewSerial(opts ...SerialOption) *Serial {
	s := &Serial{
		open: serial.Open,
		mode: serial.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		readTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open implements Transport.
func (s *Serial) Open(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		_ = s.closeLocked()
	}

	mode := s.mode
	port, err := s.open(name, &mode)
	if err != nil {
		return opError("open", name, err)
	}

	if err := port.SetReadTimeout(s.readTimeout); err != nil {
		_ = port.Close()
		return opError("open", name, err)
	}

	s.port = port
	s.name = name
	slog.Info("Serial port opened", "port", name, "baud", s.mode.BaudRate)
	return nil
}

// Close implements Transport. Closing a closed transport is a no-op.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Serial) closeLocked() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	name := s.name
	s.port = nil
	s.name = ""
	slog.Info("Serial port closed", "port", name)
	return opError("close", name, err)
}

// Send implements Transport.
func (s *Serial) Send(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return 0, opError("send", "", common.ErrNotConnected)
	}
	n, err := s.port.Write(p)
	if err != nil {
		return n, opError("send", s.name, err)
	}
	return n, nil
}

// TryReceive implements Transport.
func (s *Serial) TryReceive(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return 0, opError("receive", "", common.ErrNotConnected)
	}
	n, err := s.port.Read(buf)
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
			return 0, opError("receive", s.name, common.ErrNotConnected)
		}
		return n, opError("receive", s.name, err)
	}
	return n, nil
}

// IsOpen implements Transport.
func (s *Serial) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, opError("list", "", err)
	}
	return ports, nil
}

// Ensure we implement the interface.
var _ Transport = (*Serial)(nil)
