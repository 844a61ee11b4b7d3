package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/registry"
	"github.com/Veraticus/rfidgate/internal/testutil"
	"github.com/Veraticus/rfidgate/internal/transport"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, *transport.Pipe, *testutil.Recorder) {
	t.Helper()
	pipe := transport.NewPipe()
	rec := testutil.NewRecorder()
	opts = append([]Option{WithInitCommand("", 0)}, opts...)
	s := New(pipe, rec, opts...)
	require.NoError(t, s.Open("sim0"))
	return s, pipe, rec
}

// drain polls enough times to consume everything injected so far.
func drain(t *testing.T, s *Session) int {
	t.Helper()
	total := 0
	for i := 0; i < 64; i++ {
		n, err := s.Poll()
		require.NoError(t, err)
		total += n
	}
	return total
}

func TestSession_OpenPublishesConnection(t *testing.T) {
	s, _, rec := newTestSession(t)

	assert.True(t, s.Connected())
	assert.Equal(t, "sim0", s.Port())
	assert.Contains(t, rec.Events(), testutil.Event("connection:sim0:true"))
	assert.Equal(t, access.State{}, s.State())
}

func TestSession_OpenRequiresPort(t *testing.T) {
	s := New(transport.NewPipe(), nil)
	assert.ErrorIs(t, s.Open(""), common.ErrNoPortSelected)
}

func TestSession_OpenFailureLeavesSessionClosed(t *testing.T) {
	pipe := transport.NewPipe()
	pipe.OpenErr = errors.New("permission denied")
	rec := testutil.NewRecorder()
	s := New(pipe, rec)

	err := s.Open("/dev/ttyUSB0")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.False(t, s.Connected())
	assert.NotContains(t, rec.Events(), testutil.Event("connection:/dev/ttyUSB0:true"))

	n, err := s.Poll()
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestSession_PollDrivesCore(t *testing.T) {
	s, pipe, rec := newTestSession(t)
	s.Authorize("ABC123")

	pipe.InjectString("checkMode.auth\nuid.ABC123\nnoise\nauth.success\n")
	records := drain(t, s)

	assert.Equal(t, 4, records)
	assert.Equal(t, []string{"checkMode.auth", "uid.ABC123", "noise", "auth.success"}, rec.Lines())
	state := s.State()
	assert.True(t, state.CheckMode)
	assert.Equal(t, "ABC123", state.Current)
	assert.Equal(t, access.Granted, state.Verdict)
}

func TestSession_LineSplitAcrossPolls(t *testing.T) {
	s, pipe, _ := newTestSession(t, WithReadChunk(4))

	pipe.InjectString("uid.ABC123\n")
	drain(t, s)

	assert.Equal(t, "ABC123", s.State().Current)
	assert.Equal(t, access.Denied, s.State().Verdict)
	assert.Equal(t, registry.Provisional, s.Classify("ABC123"))
}

func TestSession_OverlongLineIsTruncated(t *testing.T) {
	s, pipe, rec := newTestSession(t, WithBufferSize(16))

	pipe.InjectString("uid." + strings.Repeat("Z", 100) + "\nuid.B\n")
	drain(t, s)

	lines := rec.Lines()
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 15)
	assert.Equal(t, "B", s.State().Current, "session keeps working after overflow")
}

func TestSession_CloseResetsState(t *testing.T) {
	s, pipe, rec := newTestSession(t)
	pipe.InjectString("checkMode.auth\nuid.X\nuid.partial")
	drain(t, s)
	require.True(t, s.State().HasCurrent)

	require.NoError(t, s.Close())

	assert.False(t, s.Connected())
	assert.Equal(t, access.State{}, s.State())
	assert.Contains(t, rec.Events(), testutil.Event("connection:sim0:false"))
	last, ok := rec.LastVerdict()
	require.True(t, ok)
	assert.Equal(t, "Unknown", last)

	// the partial record from before the close must not leak into the next connection
	require.NoError(t, s.Open("sim0"))
	pipe.InjectString("ABC\n")
	drain(t, s)
	assert.False(t, s.State().HasCurrent)
}

func TestSession_KeepRegistryAcrossReconnect(t *testing.T) {
	s, pipe, _ := newTestSession(t, WithKeepRegistry(true))
	pipe.InjectString("uid.A\n")
	drain(t, s)
	s.Authorize("B")

	require.NoError(t, s.Close())
	require.NoError(t, s.Open("sim0"))

	assert.Equal(t, registry.Provisional, s.Classify("A"))
	assert.Equal(t, registry.Authorized, s.Classify("B"))
}

func TestSession_ResetRegistryAcrossReconnect(t *testing.T) {
	s, pipe, _ := newTestSession(t, WithKeepRegistry(false), WithAuthorized("SEED"))
	pipe.InjectString("uid.A\n")
	drain(t, s)
	s.Authorize("B")

	require.NoError(t, s.Close())
	assert.Equal(t, registry.Unseen, s.Classify("A"))
	assert.Equal(t, registry.Unseen, s.Classify("B"))
	assert.Equal(t, registry.Authorized, s.Classify("SEED"), "configured identifiers are seeded again")

	require.NoError(t, s.Open("sim0"))
	assert.Equal(t, []string{"SEED"}, s.List(registry.Authorized))
}

// disconnectSink records the registry contents seen when the disconnect arrives.
type disconnectSink struct {
	access.NopSink
	list func() []string
	seen []string
	got  bool
}

func (d *disconnectSink) ConnectionChanged(_ string, connected bool) {
	if !connected {
		d.seen = d.list()
		d.got = true
	}
}

func TestSession_DisconnectPublishedAfterRegistryReset(t *testing.T) {
	pipe := transport.NewPipe()
	sink := &disconnectSink{}
	s := New(pipe, sink, WithInitCommand("", 0), WithKeepRegistry(false))
	sink.list = func() []string { return s.List(registry.Provisional) }

	require.NoError(t, s.Open("sim0"))
	pipe.InjectString("uid.GHOST\n")
	drain(t, s)
	require.Equal(t, []string{"GHOST"}, s.List(registry.Provisional))

	require.NoError(t, s.Close())
	require.True(t, sink.got)
	assert.Empty(t, sink.seen)
}

func TestSession_AuthorizeTrimsIdentifier(t *testing.T) {
	s, pipe, _ := newTestSession(t, WithAuthorized(" SEED\t", "  "))
	assert.Equal(t, []string{"SEED"}, s.List(registry.Authorized))

	s.Authorize("  ABC ")
	assert.Equal(t, []string{"ABC", "SEED"}, s.List(registry.Authorized))

	pipe.InjectString("uid.ABC\n")
	drain(t, s)
	assert.Equal(t, access.Granted, s.State().Verdict)

	pipe.InjectString("uid. SEED \n")
	drain(t, s)
	assert.Equal(t, access.Granted, s.State().Verdict)
}

func TestSession_AuthorizeAndForget(t *testing.T) {
	s, pipe, _ := newTestSession(t)

	pipe.InjectString("uid.X\n")
	drain(t, s)
	assert.Equal(t, access.Denied, s.State().Verdict)
	assert.Equal(t, []string{"X"}, s.List(registry.Provisional))

	s.Authorize("X")
	assert.Equal(t, access.Denied, s.State().Verdict, "promotion alone does not change the verdict")
	assert.Empty(t, s.List(registry.Provisional))
	assert.Equal(t, []string{"X"}, s.List(registry.Authorized))

	pipe.InjectString("uid.X\n")
	drain(t, s)
	assert.Equal(t, access.Granted, s.State().Verdict)

	s.Forget("X")
	assert.Equal(t, registry.Unseen, s.Classify("X"))

	s.Authorize("   ")
	assert.Empty(t, s.List(registry.Authorized))
}

func TestSession_Send(t *testing.T) {
	s, pipe, _ := newTestSession(t)

	n, err := s.Send("getRFIDMode")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "getRFIDMode\n", pipe.Sent())

	require.NoError(t, s.Close())
	_, err = s.Send("getRFIDMode")
	assert.ErrorIs(t, err, common.ErrNotConnected)
}

func TestSession_InitCommand(t *testing.T) {
	pipe := transport.NewPipe()
	s := New(pipe, nil, WithInitCommand("getRFIDMode", 10*time.Millisecond))
	require.NoError(t, s.Open("sim0"))

	assert.Eventually(t, func() bool {
		return pipe.Sent() == "getRFIDMode\n"
	}, time.Second, 5*time.Millisecond)
}

func TestSession_CloseCancelsInitCommand(t *testing.T) {
	pipe := transport.NewPipe()
	s := New(pipe, nil, WithInitCommand("getRFIDMode", 50*time.Millisecond))
	require.NoError(t, s.Open("sim0"))
	require.NoError(t, s.Close())

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, pipe.Sent())
}

func TestSession_ReceiveErrorClosesSession(t *testing.T) {
	s, pipe, rec := newTestSession(t)
	pipe.InjectString("uid.X\n")
	drain(t, s)

	pipe.ReceiveErr = errors.New("device unplugged")
	_, err := s.Poll()

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.False(t, s.Connected())
	assert.Equal(t, access.State{}, s.State())
	assert.Contains(t, rec.Events(), testutil.Event("connection:sim0:false"))
}

func TestSession_Run(t *testing.T) {
	s, pipe, _ := newTestSession(t, WithPollInterval(5*time.Millisecond))
	s.Authorize("ABC123")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	pipe.InjectString("uid.ABC123\n")
	assert.Eventually(t, func() bool {
		return s.State().Verdict == access.Granted
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestSession_RunReturnsTransportError(t *testing.T) {
	s, pipe, _ := newTestSession(t, WithPollInterval(5*time.Millisecond))
	pipe.ReceiveErr = errors.New("device unplugged")

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.False(t, s.Connected())
}

func TestSession_ConcurrentOperatorActions(t *testing.T) {
	s, pipe, _ := newTestSession(t, WithPollInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	for i := 0; i < 50; i++ {
		pipe.InjectString("uid.T\n")
		if i%2 == 0 {
			s.Authorize("T")
		} else {
			s.Forget("T")
		}
	}

	assert.Eventually(t, func() bool {
		return s.State().HasCurrent
	}, time.Second, time.Millisecond)
}
