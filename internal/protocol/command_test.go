package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		want   Command
		name   string
		line   string
		wantOK bool
	}{
		{name: "check mode on", line: "checkMode.auth", want: SetCheckMode{On: true}, wantOK: true},
		{name: "check mode on with whitespace", line: "checkMode. auth \r", want: SetCheckMode{On: true}, wantOK: true},
		{name: "check mode off", line: "checkMode.off", want: SetCheckMode{On: false}, wantOK: true},
		{name: "check mode other token", line: "checkMode.authenticate", want: SetCheckMode{On: false}, wantOK: true},
		{name: "auth success", line: "auth.success", want: AuthResult{Success: true}, wantOK: true},
		{name: "auth success with crlf", line: "auth.success\r", want: AuthResult{Success: true}, wantOK: true},
		{name: "auth failure", line: "auth.denied", want: AuthResult{Success: false}, wantOK: true},
		{name: "uid", line: "uid.ABC123", want: UIDEvent{ID: "ABC123"}, wantOK: true},
		{name: "uid trimmed", line: "uid.  xyz  ", want: UIDEvent{ID: "xyz"}, wantOK: true},
		{name: "uid embedded whitespace kept", line: "uid. 04 A2 19 ", want: UIDEvent{ID: "04 A2 19"}, wantOK: true},
		{name: "uid extra fields ignored", line: "uid.AB.CD", want: UIDEvent{ID: "AB"}, wantOK: true},
		{name: "uid empty fields collapsed", line: "uid..X", want: UIDEvent{ID: "X"}, wantOK: true},
		{name: "leading separator skipped", line: ".uid.X", want: UIDEvent{ID: "X"}, wantOK: true},
		{name: "trailing separator", line: "auth.success.", want: AuthResult{Success: true}, wantOK: true},
		{name: "uid blank", line: "uid.   ", wantOK: false},
		{name: "uid without payload", line: "uid", wantOK: false},
		{name: "uid with empty payload", line: "uid.", wantOK: false},
		{name: "auth without payload", line: "auth", wantOK: false},
		{name: "check mode without payload", line: "checkMode", wantOK: false},
		{name: "unknown word", line: "hello.world", wantOK: false},
		{name: "case sensitive word", line: "UID.ABC", wantOK: false},
		{name: "empty line", line: "", wantOK: false},
		{name: "only separators", line: "...", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "checkMode.auth\n", Format(SetCheckMode{On: true}))
	assert.Equal(t, "checkMode.off\n", Format(SetCheckMode{On: false}))
	assert.Equal(t, "auth.success\n", Format(AuthResult{Success: true}))
	assert.Equal(t, "auth.fail\n", Format(AuthResult{Success: false}))
	assert.Equal(t, "uid.ABC123\n", Format(UIDEvent{ID: "ABC123"}))
	assert.Empty(t, Format(nil))
}

func TestFormatThenParse(t *testing.T) {
	f := NewFramer(DefaultBufferSize)
	cmds := []Command{
		SetCheckMode{On: true},
		UIDEvent{ID: "ABC123"},
		AuthResult{Success: true},
		SetCheckMode{On: false},
	}

	var wire []byte
	for _, c := range cmds {
		wire = append(wire, Format(c)...)
	}

	var got []Command
	for line := range f.Feed(wire) {
		c, ok := Parse(line)
		if assert.True(t, ok, line) {
			got = append(got, c)
		}
	}
	assert.Equal(t, cmds, got)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "checkMode(on=true)", SetCheckMode{On: true}.String())
	assert.Equal(t, "auth(success=false)", AuthResult{}.String())
	assert.Equal(t, `uid("X")`, UIDEvent{ID: "X"}.String())
}
