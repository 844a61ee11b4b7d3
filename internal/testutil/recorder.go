// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Veraticus/rfidgate/internal/access"
)

// Event is one sink call captured by a Recorder, rendered as "kind:value".
type Event string

// Recorder is an access.Sink that records every call in order. It is safe for
// concurrent use.
type Recorder struct {
	events   []Event
	lines    []string
	observed []string
	mu       sync.Mutex
}

// Ensure we implement the interface.
var _ access.Sink = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Line implements access.Sink.
func (r *Recorder) Line(text string) {
	r.mu.Lock()
	r.lines = append(r.lines, text)
	r.mu.Unlock()
	r.add(Event("line:" + text))
}

// IdentifierObserved implements access.Sink.
func (r *Recorder) IdentifierObserved(id string) {
	r.mu.Lock()
	r.observed = append(r.observed, id)
	r.mu.Unlock()
	r.add(Event("observed:" + id))
}

// IdentifierChanged implements access.Sink.
func (r *Recorder) IdentifierChanged(id string, ok bool) {
	if !ok {
		r.add("identifier:<none>")
		return
	}
	r.add(Event("identifier:" + id))
}

// VerdictChanged implements access.Sink.
func (r *Recorder) VerdictChanged(v access.Verdict) {
	r.add(Event("verdict:" + v.String()))
}

// CheckModeChanged implements access.Sink.
func (r *Recorder) CheckModeChanged(on bool) {
	r.add(Event(fmt.Sprintf("checkMode:%t", on)))
}

// ConnectionChanged implements access.Sink.
func (r *Recorder) ConnectionChanged(port string, connected bool) {
	r.add(Event(fmt.Sprintf("connection:%s:%t", port, connected)))
}

// Events returns a copy of all recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Lines returns the raw lines received.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Observed returns the identifiers reported as newly observed.
func (r *Recorder) Observed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.observed...)
}

// LastVerdict returns the most recently published verdict, or false if none was.
func (r *Recorder) LastVerdict() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(string(r.events[i]), "verdict:"); ok {
			return v, true
		}
	}
	return "", false
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.lines = nil
	r.observed = nil
}
