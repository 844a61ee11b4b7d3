package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/rfidgate/internal/access"
)

// Sink forwards session events into a running program as messages. Events
// published before a program is attached are dropped.
type Sink struct {
	program atomic.Pointer[tea.Program]
	send    func(tea.Msg)
	now     func() time.Time
}

// NewSink creates a sink that delivers to the program given to Attach.
func NewSink() *Sink {
	s := &Sink{now: time.Now}
	s.send = s.toProgram
	return s
}

// newFuncSink delivers through send instead of a program.
func newFuncSink(send func(tea.Msg)) *Sink {
	return &Sink{send: send, now: time.Now}
}

// Attach directs events to p. Program.Send blocks until the event loop takes
// the message, so Update must never wait on the session.
func (s *Sink) Attach(p *tea.Program) {
	s.program.Store(p)
}

func (s *Sink) toProgram(msg tea.Msg) {
	if p := s.program.Load(); p != nil {
		p.Send(msg)
	}
}

func (s *Sink) Line(text string) {
	s.send(lineMsg{at: s.now(), text: text})
}

func (s *Sink) IdentifierObserved(id string) {
	s.send(identifierObservedMsg{id: id})
}

func (s *Sink) IdentifierChanged(id string, ok bool) {
	s.send(identifierChangedMsg{id: id, ok: ok})
}

func (s *Sink) VerdictChanged(v access.Verdict) {
	s.send(verdictMsg{verdict: v})
}

func (s *Sink) CheckModeChanged(on bool) {
	s.send(checkModeMsg{on: on})
}

func (s *Sink) ConnectionChanged(port string, connected bool) {
	s.send(connectionMsg{port: port, connected: connected})
}

var _ access.Sink = (*Sink)(nil)
