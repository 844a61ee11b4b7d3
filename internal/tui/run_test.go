package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/session"
	"github.com/Veraticus/rfidgate/internal/testutil"
	"github.com/Veraticus/rfidgate/internal/transport"
	"github.com/Veraticus/rfidgate/internal/tui/tuitest"
)

func TestRun_Headless(t *testing.T) {
	pipe := transport.NewPipe()
	rec := testutil.NewRecorder()
	sink := NewSink()
	sess := session.New(pipe, access.MultiSink{sink, rec},
		session.WithPollInterval(5*time.Millisecond),
		session.WithInitCommand("", 0),
		session.WithAuthorized("ABC123"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, sess, sess, sink,
			WithPort("sim0"),
			WithPortLister(func() ([]string, error) { return nil, nil }),
			WithProgramOptions(tea.WithInput(nil), tea.WithoutRenderer()),
		)
	}()

	require.Eventually(t, sess.Connected, time.Second, 5*time.Millisecond, "Init connects the preselected port")

	pipe.InjectString("uid.ABC123\n")
	require.Eventually(t, func() bool {
		v, ok := rec.LastVerdict()
		return ok && v == "Granted"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.False(t, sess.Connected(), "session is closed on exit")
	assert.Contains(t, rec.Events(), testutil.Event("connection:sim0:false"))
}

type fakeRunner struct {
	errs  []error
	calls int
	mu    sync.Mutex
}

func (f *fakeRunner) Run(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()
	<-ctx.Done()
	return nil
}

func TestPump_ReportsFailuresAndResumes(t *testing.T) {
	runner := &fakeRunner{errs: []error{errors.New("device unplugged"), errors.New("read timeout")}}

	var (
		mu   sync.Mutex
		msgs []tea.Msg
	)
	send := func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		msgs = append(msgs, msg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		pump(ctx, runner, send)
	}()

	require.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return runner.calls == 3
	}, time.Second, time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, msgs, 2)
	assert.EqualError(t, msgs[0].(errorMsg).err, "device unplugged")
	assert.EqualError(t, msgs[1].(errorMsg).err, "read timeout")
}

func TestPump_MarksTransportFailures(t *testing.T) {
	unplugged := fmt.Errorf("read sim0: %w", common.ErrTransport)
	runner := &fakeRunner{errs: []error{unplugged}}

	msgs := make(chan tea.Msg, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		pump(ctx, runner, func(msg tea.Msg) { msgs <- msg })
	}()

	msg := (<-msgs).(errorMsg)
	cancel()
	<-done

	assert.Equal(t, "Connection lost", msg.context)
	assert.ErrorIs(t, msg.err, common.ErrTransport)

	m := newTestModel(t, newFakeController())
	next, _ := m.Update(msg)
	assert.Contains(t, tuitest.Plain(next.(Model).View()), "Connection lost")
}

func TestPump_StopsOnCleanExit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sent int
	pump(ctx, &fakeRunner{}, func(tea.Msg) { sent++ })
	assert.Zero(t, sent)
}
