package tui

import (
	"github.com/Veraticus/rfidgate/internal/registry"
	"github.com/Veraticus/rfidgate/internal/session"
)

// Controller is the part of a session the TUI drives. Methods that take the
// session lock are only ever called from commands, never from Update, so a
// poll that is publishing to the program cannot deadlock against the UI.
type Controller interface {
	Open(port string) error
	Close() error
	Send(cmd string) (int, error)
	Authorize(id string)
	Forget(id string)
	List(c registry.Classification) []string
}

var _ Controller = (*session.Session)(nil)
