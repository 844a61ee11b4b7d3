// Package access turns decoded reader commands into access verdicts.
package access

import (
	"log/slog"

	"github.com/Veraticus/rfidgate/internal/protocol"
	"github.com/Veraticus/rfidgate/internal/registry"
)

// Verdict is the host's access decision for the most recent identifier.
type Verdict int

const (
	// Unknown means no identifier has been evaluated since the session started.
	Unknown Verdict = iota
	// Granted means the identifier is trusted (and the device confirmed it in check mode).
	Granted
	// Denied means the identifier is not trusted or authentication failed.
	Denied
	// Authenticating means the device is authenticating the tag and a result is pending.
	Authenticating
)

func (v Verdict) String() string {
	switch v {
	case Unknown:
		return "Unknown"
	case Granted:
		return "Granted"
	case Denied:
		return "Denied"
	case Authenticating:
		return "Authenticating"
	default:
		return "Invalid"
	}
}

// State is the protocol state derived from device events.
type State struct {
	Current    string
	HasCurrent bool
	CheckMode  bool
	Verdict    Verdict
}

// Machine is the access state machine. It owns the protocol state, consults and
// updates the registry, and publishes every change to its sink.
//
// A Machine is not safe for concurrent use; the owning session serializes calls.
type Machine struct {
	registry *registry.Registry
	sink     Sink
	state    State
}

// NewMachine creates a machine in the initial state. A nil sink discards events.
func NewMachine(reg *registry.Registry, sink Sink) *Machine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Machine{
		registry: reg,
		sink:     sink,
	}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state
}

// Apply runs the transition for cmd.
func (m *Machine) Apply(cmd protocol.Command) {
	switch c := cmd.(type) {
	case protocol.SetCheckMode:
		m.setCheckMode(c.On)
	case protocol.UIDEvent:
		m.observe(c.ID)
	case protocol.AuthResult:
		m.authResult(c.Success)
	}
}

func (m *Machine) setCheckMode(on bool) {
	m.state.CheckMode = on
	m.sink.CheckModeChanged(on)
}

func (m *Machine) observe(id string) {
	m.state.Current = id
	m.state.HasCurrent = true
	m.sink.IdentifierChanged(id, true)

	if m.registry.Observe(id) {
		m.sink.IdentifierObserved(id)
	}

	if m.state.CheckMode {
		m.setVerdict(Authenticating)
		return
	}

	if m.registry.Classify(id) == registry.Authorized {
		m.setVerdict(Granted)
		return
	}
	m.setVerdict(Denied)
}

func (m *Machine) authResult(success bool) {
	if !m.state.CheckMode {
		slog.Debug("Ignoring auth result outside check mode", "success", success)
		return
	}

	if success && m.state.HasCurrent && m.registry.Classify(m.state.Current) == registry.Authorized {
		m.setVerdict(Granted)
		return
	}
	m.setVerdict(Denied)
}

func (m *Machine) setVerdict(v Verdict) {
	m.state.Verdict = v
	m.sink.VerdictChanged(v)
}

// Reset restores the initial state and publishes it.
func (m *Machine) Reset() {
	m.state = State{}
	m.sink.IdentifierChanged("", false)
	m.sink.CheckModeChanged(false)
	m.sink.VerdictChanged(Unknown)
}
