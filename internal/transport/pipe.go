package transport

import (
	"bytes"
	"sync"

	"github.com/Veraticus/rfidgate/internal/common"
)

// Pipe is an in-memory Transport. The device side injects bytes with Inject and
// reads what the host sent with Sent. It backs the simulate command and tests.
type Pipe struct {
	// OpenErr, when set, makes Open fail with it.
	OpenErr error
	// ReceiveErr, when set, makes the next TryReceive fail with it.
	ReceiveErr error

	inbound  bytes.Buffer
	outbound bytes.Buffer
	name     string
	opened   int
	open     bool
	mu       sync.Mutex
}

// NewPipe creates a closed in-memory transport.
func NewPipe() *Pipe {
	return &Pipe{}
}

// Open implements Transport. Reopening drops bytes not yet received.
func (p *Pipe) Open(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.OpenErr != nil {
		p.open = false
		return opError("open", name, p.OpenErr)
	}
	p.inbound.Reset()
	p.name = name
	p.open = true
	p.opened++
	return nil
}

// Close implements Transport.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

// Send implements Transport.
func (p *Pipe) Send(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return 0, opError("send", "", common.ErrNotConnected)
	}
	return p.outbound.Write(b)
}

// TryReceive implements Transport.
func (p *Pipe) TryReceive(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return 0, opError("receive", "", common.ErrNotConnected)
	}
	if err := p.ReceiveErr; err != nil {
		p.ReceiveErr = nil
		return 0, opError("receive", p.name, err)
	}
	if p.inbound.Len() == 0 {
		return 0, nil
	}
	return p.inbound.Read(buf)
}

// IsOpen implements Transport.
func (p *Pipe) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Inject queues bytes as if the device had written them.
func (p *Pipe) Inject(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inbound.Write(b)
}

// InjectString queues s as device output.
func (p *Pipe) InjectString(s string) {
	p.Inject([]byte(s))
}

// Buffered returns the number of injected bytes not yet received.
func (p *Pipe) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inbound.Len()
}

// Sent returns everything the host has sent so far.
func (p *Pipe) Sent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbound.String()
}

// OpenCount returns how many times Open succeeded.
func (p *Pipe) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened
}

// Ensure we implement the interface.
var _ Transport = (*Pipe)(nil)
