// Package protocol implements the line-oriented serial command protocol spoken
// by the RFID reader: byte framing into records and decoding records into commands.
package protocol

import "iter"

// DefaultBufferSize is the reference line buffer capacity. A record holds at most
// DefaultBufferSize-1 bytes.
const DefaultBufferSize = 256

// Delimiter terminates every record on the wire.
const Delimiter = '\n'

// Framer accumulates received bytes into a bounded buffer and emits complete
// newline-terminated records. Bytes that do not fit before the next delimiter are
// dropped; the truncated record is still emitted when the delimiter arrives.
//
// A Framer is not safe for concurrent use.
type Framer struct {
	buf        []byte
	backlog    []byte
	capacity   int
	overflowed bool
}

// NewFramer creates a framer with the given buffer capacity. Capacities below 2
// fall back to DefaultBufferSize.
func NewFramer(capacity int) *Framer {
	if capacity < 2 {
		capacity = DefaultBufferSize
	}
	return &Framer{
		buf:      make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Feed queues p and returns the records completed so far. The bytes are
// copied when Feed is called; the sequence consumes them as the caller
// iterates. Bytes left unread when the caller stops early, or when the
// sequence is never iterated, are consumed first by the next sequence.
// Iterating a drained sequence yields nothing. Partial records carry over
// between calls.
func (f *Framer) Feed(p []byte) iter.Seq[string] {
	f.backlog = append(f.backlog, p...)
	return f.drain
}

func (f *Framer) drain(yield func(string) bool) {
	for len(f.backlog) > 0 {
		b := f.backlog[0]
		f.backlog = f.backlog[1:]
		if b != Delimiter {
			f.push(b)
			continue
		}
		line := string(f.buf)
		f.buf = f.buf[:0]
		f.overflowed = false
		if !yield(line) {
			break
		}
	}
	if len(f.backlog) == 0 {
		f.backlog = nil
	}
}

func (f *Framer) push(b byte) {
	if len(f.buf) < f.capacity-1 {
		f.buf = append(f.buf, b)
		return
	}
	f.overflowed = true
}

// Pending reports the number of bytes buffered for the record in progress.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Overflowed reports whether the record in progress has been truncated.
func (f *Framer) Overflowed() bool {
	return f.overflowed
}

// Capacity returns the buffer capacity.
func (f *Framer) Capacity() int {
	return f.capacity
}

// Reset discards any partial record and unread input.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.backlog = nil
	f.overflowed = false
}
