package transport

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Veraticus/rfidgate/internal/common"
)

// Replay is a read-only Transport that plays back a capture of reader output
// from a file. Each TryReceive returns at most ChunkSize bytes so a capture is
// consumed over several polls, the way a real port delivers it.
type Replay struct {
	file      *os.File
	name      string
	size      int64
	offset    int64
	chunkSize int
	done      bool
	mu        sync.Mutex
}

// DefaultChunkSize matches the read size the host uses against real ports.
const DefaultChunkSize = 128

// NewReplay creates a closed replay transport. chunkSize <= 0 uses DefaultChunkSize.
func NewReplay(chunkSize int) *Replay {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Replay{chunkSize: chunkSize}
}

// Open implements Transport; name is the capture file path.
func (r *Replay) Open(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}

	f, err := os.Open(filepath.Clean(name)) // #nosec G304 -- capture path is chosen by the operator
	if err != nil {
		return opError("open", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return opError("open", name, err)
	}

	r.file = f
	r.name = name
	r.size = info.Size()
	r.offset = 0
	r.done = false
	return nil
}

// Close implements Transport.
func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return opError("close", r.name, err)
}

// Send implements Transport. A capture cannot answer, so outbound bytes are
// logged and discarded.
func (r *Replay) Send(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, opError("send", "", common.ErrNotConnected)
	}
	slog.Debug("Discarding command sent to replay", "command", string(p))
	return len(p), nil
}

// TryReceive implements Transport.
func (r *Replay) TryReceive(buf []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, opError("receive", "", common.ErrNotConnected)
	}
	if r.done {
		return 0, nil
	}

	if len(buf) > r.chunkSize {
		buf = buf[:r.chunkSize]
	}
	n, err := r.file.Read(buf)
	r.offset += int64(n)
	if errors.Is(err, io.EOF) {
		r.done = true
		return n, nil
	}
	if err != nil {
		return n, opError("receive", r.name, err)
	}
	return n, nil
}

// IsOpen implements Transport.
func (r *Replay) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file != nil
}

// Done reports whether the whole capture has been delivered.
func (r *Replay) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done || (r.file != nil && r.offset >= r.size)
}

// Size returns the capture size in bytes.
func (r *Replay) Size() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Offset returns how many bytes have been delivered.
func (r *Replay) Offset() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}

// Ensure we implement the interface.
var _ Transport = (*Replay)(nil)
