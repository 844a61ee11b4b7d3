package tui

import (
	"time"

	"github.com/Veraticus/rfidgate/internal/access"
)

// Session events, delivered by Sink.
type lineMsg struct {
	at   time.Time
	text string
}

type identifierObservedMsg struct {
	id string
}

type identifierChangedMsg struct {
	id string
	ok bool
}

type verdictMsg struct {
	verdict access.Verdict
}

type checkModeMsg struct {
	on bool
}

type connectionMsg struct {
	port      string
	connected bool
}

// Results of operator actions.
type connectResultMsg struct {
	err  error
	port string
}

type disconnectResultMsg struct {
	err error
}

type portsLoadedMsg struct {
	err   error
	ports []string
}

type registryChangedMsg struct {
	id     string
	action string
}

type sentMsg struct {
	err     error
	command string
}

// Error handling.
type errorMsg struct {
	err     error
	context string
}
