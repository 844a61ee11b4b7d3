// Package session ties a transport to the protocol core. A Session owns the
// line framer, the identifier registry and the access state machine for one
// connection, and serializes every mutation of them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/protocol"
	"github.com/Veraticus/rfidgate/internal/registry"
	"github.com/Veraticus/rfidgate/internal/transport"
)

// Session drives one reader connection.
type Session struct {
	transport transport.Transport
	sink      access.Sink
	registry  *registry.Registry
	machine   *access.Machine
	framer    *protocol.Framer
	initTimer *time.Timer
	port      string
	readBuf   []byte
	cfg       Config
	mu        sync.Mutex
}

// New creates a closed session on top of t. Events are published to sink.
func New(t transport.Transport, sink access.Sink, opts ...Option) *Session {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if sink == nil {
		sink = access.NopSink{}
	}

	reg := registry.New()
	s := &Session{
		transport: t,
		sink:      sink,
		registry:  reg,
		machine:   access.NewMachine(reg, sink),
		framer:    protocol.NewFramer(cfg.BufferSize),
		readBuf:   make([]byte, cfg.ReadChunk),
		cfg:       cfg,
	}
	s.seed()
	return s
}

func (s *Session) seed() {
	for _, id := range s.cfg.Authorized {
		if id = strings.TrimSpace(id); id != "" {
			s.registry.Authorize(id)
		}
	}
}

// Open connects to port. Any previous connection is closed first and the
// protocol state starts fresh. On failure the session stays closed.
func (s *Session) Open(port string) error {
	if port == "" {
		return common.ErrNoPortSelected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport.IsOpen() {
		_ = s.closeLocked()
	} else {
		s.resetLocked()
	}

	if err := s.transport.Open(port); err != nil {
		slog.Error("Failed to open reader", "port", port, "error", err)
		return fmt.Errorf("failed to open %s: %w", port, err)
	}

	s.port = port
	s.sink.ConnectionChanged(port, true)
	slog.Info("Reader connected", "port", port)

	if s.cfg.InitCommand != "" {
		cmd := s.cfg.InitCommand
		s.initTimer = time.AfterFunc(s.cfg.InitDelay, func() {
			if _, err := s.Send(cmd); err != nil {
				slog.Warn("Failed to send initial command", "command", cmd, "error", err)
			}
		})
	}
	return nil
}

// Close disconnects and resets the protocol state. Closing a closed session
// only resets state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeLocked()
}

// closeLocked closes the transport and resets the protocol state. The
// disconnect is published last so sinks observe the cleared registry.
func (s *Session) closeLocked() error {
	if s.initTimer != nil {
		s.initTimer.Stop()
		s.initTimer = nil
	}

	wasOpen := s.transport.IsOpen()
	port := s.port
	err := s.transport.Close()
	s.port = ""
	s.resetLocked()
	if wasOpen {
		s.sink.ConnectionChanged(port, false)
		slog.Info("Reader disconnected", "port", port)
	}
	if err != nil {
		return fmt.Errorf("failed to close reader: %w", err)
	}
	return nil
}

func (s *Session) resetLocked() {
	s.framer.Reset()
	if !s.cfg.KeepRegistry {
		s.registry.Clear()
		s.seed()
	}
	s.machine.Reset()
}

// Poll performs one non-blocking receive and processes every complete record.
// It returns the number of records handled. A receive failure closes the
// session and is returned. Polling a closed session does nothing.
func (s *Session) Poll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.transport.IsOpen() {
		return 0, nil
	}

	n, err := s.transport.TryReceive(s.readBuf)
	if err != nil {
		port := s.port
		_ = s.closeLocked()
		return 0, fmt.Errorf("failed to read from %s: %w", port, err)
	}
	if n == 0 {
		return 0, nil
	}

	records := 0
	for line := range s.framer.Feed(s.readBuf[:n]) {
		records++
		s.handleLine(line)
	}
	if s.framer.Overflowed() {
		slog.Debug("Discarding bytes beyond line buffer capacity", "capacity", s.framer.Capacity())
	}
	return records, nil
}

func (s *Session) handleLine(line string) {
	s.sink.Line(line)

	cmd, ok := protocol.Parse(line)
	if !ok {
		slog.Debug("Ignoring unrecognized line", "line", line)
		return
	}
	slog.Debug("Received command", "command", cmd.String())
	s.machine.Apply(cmd)
}

// Run polls the transport every PollInterval until ctx is done, in which case
// it returns nil. A transport failure ends Run with that error; the session is
// closed by then and Run may be called again after reopening.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Poll(); err != nil {
				return err
			}
		}
	}
}

// Send writes cmd followed by the record delimiter.
func (s *Session) Send(cmd string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.transport.IsOpen() {
		return 0, common.ErrNotConnected
	}
	n, err := s.transport.Send([]byte(cmd + string(protocol.Delimiter)))
	if err != nil {
		return n, fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	slog.Debug("Sent command", "command", cmd, "bytes", n)
	return n, nil
}

// Authorize promotes id to the trusted set. It does not re-evaluate the current
// verdict; the next UID event does. Surrounding whitespace is dropped and
// blank identifiers are ignored.
func (s *Session) Authorize(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Authorize(id)
	slog.Info("Identifier authorized", "identifier", id)
}

// Forget removes id from the registry.
func (s *Session) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Forget(id)
	slog.Info("Identifier removed", "identifier", id)
}

// Classify returns the classification of id. It reads the registry directly
// and never waits for a poll in progress.
func (s *Session) Classify(id string) registry.Classification {
	return s.registry.Classify(id)
}

// List returns the identifiers with classification c in sorted order. Like
// Classify it does not take the session lock, so sinks may call it.
func (s *Session) List(c registry.Classification) []string {
	return s.registry.List(c)
}

// State returns a copy of the protocol state.
func (s *Session) State() access.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Connected reports whether the transport is open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport.IsOpen()
}

// Port returns the connected port name, or "" when closed.
func (s *Session) Port() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}
