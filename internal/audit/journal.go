// Package audit records access decisions to persistent storage.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/model"
)

// DefaultWriteTimeout bounds a single journal write.
const DefaultWriteTimeout = 2 * time.Second

// Store is the subset of storage the journal needs.
type Store interface {
	RecordAccessEvent(ctx context.Context, event *model.AccessEvent) error
}

// Journal is an access.Sink that writes every Granted or Denied verdict to a
// Store together with the port, identifier and check mode it was rendered for.
// Other events only update the context of the next record.
type Journal struct {
	access.NopSink
	store   Store
	now     func() time.Time
	port    string
	current string
	timeout time.Duration
	mu      sync.Mutex
	check   bool
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// WithWriteTimeout bounds each write.
func WithWriteTimeout(d time.Duration) Option {
	return func(j *Journal) {
		if d > 0 {
			j.timeout = d
		}
	}
}

// NewJournal creates a journal writing to store.
func NewJournal(store Store, opts ...Option) *Journal {
	j := &Journal{
		store:   store,
		now:     time.Now,
		timeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) IdentifierChanged(id string, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !ok {
		id = ""
	}
	j.current = id
}

func (j *Journal) CheckModeChanged(on bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.check = on
}

func (j *Journal) ConnectionChanged(port string, connected bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if connected {
		j.port = port
	}
}

// VerdictChanged records final verdicts. Storage failures are logged and
// never reach the session.
func (j *Journal) VerdictChanged(v access.Verdict) {
	if v != access.Granted && v != access.Denied {
		return
	}

	j.mu.Lock()
	event := &model.AccessEvent{
		OccurredAt: j.now(),
		Port:       j.port,
		Identifier: j.current,
		Verdict:    v.String(),
		CheckMode:  j.check,
	}
	j.mu.Unlock()

	if event.Identifier == "" {
		slog.Debug("Skipping verdict without identifier", "verdict", event.Verdict)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.store.RecordAccessEvent(ctx, event); err != nil {
		slog.Warn("Failed to record access event",
			"identifier", event.Identifier,
			"verdict", event.Verdict,
			"error", err)
		return
	}
	slog.Debug("Recorded access event", "id", event.ID, "identifier", event.Identifier, "verdict", event.Verdict)
}

var _ access.Sink = (*Journal)(nil)
