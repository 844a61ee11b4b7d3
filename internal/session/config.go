package session

import (
	"time"

	"github.com/Veraticus/rfidgate/internal/protocol"
)

// Config holds session tuning.
type Config struct {
	InitCommand  string
	Authorized   []string
	BufferSize   int
	ReadChunk    int
	PollInterval time.Duration
	InitDelay    time.Duration
	KeepRegistry bool
}

// DefaultConfig returns the reference settings: a 256 byte line buffer, 128
// byte reads every 100ms, and a mode query two seconds after connecting.
func DefaultConfig() Config {
	return Config{
		BufferSize:   protocol.DefaultBufferSize,
		ReadChunk:    128,
		PollInterval: 100 * time.Millisecond,
		InitCommand:  "getRFIDMode",
		InitDelay:    2 * time.Second,
		KeepRegistry: true,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithBufferSize sets the line buffer capacity.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		if n > 1 {
			c.BufferSize = n
		}
	}
}

// WithReadChunk sets how many bytes a single poll reads at most.
func WithReadChunk(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ReadChunk = n
		}
	}
}

// WithPollInterval sets how often Run polls the transport.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// WithInitCommand sets the command sent after connecting and its delay. An
// empty command disables it.
func WithInitCommand(cmd string, delay time.Duration) Option {
	return func(c *Config) {
		c.InitCommand = cmd
		c.InitDelay = delay
	}
}

// WithKeepRegistry controls whether identifier classifications survive a
// disconnect. When false the registry is cleared on every open and close.
func WithKeepRegistry(keep bool) Option {
	return func(c *Config) {
		c.KeepRegistry = keep
	}
}

// WithAuthorized pre-authorizes identifiers. They are seeded again whenever the
// registry is cleared.
func WithAuthorized(ids ...string) Option {
	return func(c *Config) {
		c.Authorized = append(c.Authorized, ids...)
	}
}
