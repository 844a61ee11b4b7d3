package protocol

import (
	"fmt"
	"strings"
)

// FieldSeparator splits a record into its command word and payload.
const FieldSeparator = "."

// Wire vocabulary.
const (
	CheckModeWord = "checkMode"
	AuthWord      = "auth"
	UIDWord       = "uid"

	// CheckModeOn is the mode token that enables device-side authentication.
	CheckModeOn = "auth"
	// CheckModeOff is the token this package writes for a disabled check mode.
	// Any token other than CheckModeOn parses as off.
	CheckModeOff = "off"
	// AuthSuccess is the response token for a successful authentication.
	AuthSuccess = "success"
	// AuthFailure is the token this package writes for a failed authentication.
	AuthFailure = "fail"
)

// Command is a decoded device event. The set of implementations is closed:
// SetCheckMode, AuthResult and UIDEvent.
type Command interface {
	command()
	fmt.Stringer
}

// SetCheckMode reports whether the device gates access itself.
type SetCheckMode struct {
	On bool
}

// AuthResult is the device's authentication outcome for the last scanned tag.
type AuthResult struct {
	Success bool
}

// UIDEvent reports a scanned tag identifier.
type UIDEvent struct {
	ID string
}

func (SetCheckMode) command() {}
func (AuthResult) command()   {}
func (UIDEvent) command()     {}

func (c SetCheckMode) String() string { return fmt.Sprintf("checkMode(on=%t)", c.On) }
func (c AuthResult) String() string   { return fmt.Sprintf("auth(success=%t)", c.Success) }
func (c UIDEvent) String() string     { return fmt.Sprintf("uid(%q)", c.ID) }

// Parse decodes one record. It reports false for unknown command words, for
// records without a payload field and for uid events with a blank identifier.
// Only the second field is used as payload; fields containing the separator are
// not supported.
func Parse(line string) (Command, bool) {
	word, payload, ok := split(line)
	if !ok {
		return nil, false
	}

	switch word {
	case CheckModeWord:
		return SetCheckMode{On: strings.TrimSpace(payload) == CheckModeOn}, true
	case AuthWord:
		return AuthResult{Success: strings.TrimSpace(payload) == AuthSuccess}, true
	case UIDWord:
		id := strings.TrimSpace(payload)
		if id == "" {
			return nil, false
		}
		return UIDEvent{ID: id}, true
	default:
		return nil, false
	}
}

// split returns the command word and the payload field. Empty fields are
// skipped, so "uid..X" and ".uid.X" both carry payload "X". ok is false when
// the record has no payload field at all.
func split(line string) (word, payload string, ok bool) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == '.'
	})
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

// Format renders cmd in wire form including the trailing delimiter.
func Format(cmd Command) string {
	switch c := cmd.(type) {
	case SetCheckMode:
		mode := CheckModeOff
		if c.On {
			mode = CheckModeOn
		}
		return CheckModeWord + FieldSeparator + mode + string(Delimiter)
	case AuthResult:
		resp := AuthFailure
		if c.Success {
			resp = AuthSuccess
		}
		return AuthWord + FieldSeparator + resp + string(Delimiter)
	case UIDEvent:
		return UIDWord + FieldSeparator + c.ID + string(Delimiter)
	default:
		return ""
	}
}
