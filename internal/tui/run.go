package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/rfidgate/internal/common"
)

// Runner polls the reader until its context is done. session.Session
// implements it: Run returns nil on cancellation and the transport error that
// closed the session otherwise.
type Runner interface {
	Run(ctx context.Context) error
}

// Run shows the monitor until the operator quits or ctx is canceled. sink
// must be the sink the session publishes to; it is attached to the program
// before polling starts. The session is closed on return.
func Run(ctx context.Context, ctrl Controller, runner Runner, sink *Sink, opts ...Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := append([]tea.ProgramOption{tea.WithContext(ctx)}, cfg.ProgramOptions...)
	program := tea.NewProgram(NewModel(ctrl, opts...), programOpts...)
	sink.Attach(program)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pump(ctx, runner, program.Send)
	}()

	_, err := program.Run()
	cancel()
	<-done

	if closeErr := ctrl.Close(); closeErr != nil {
		slog.Warn("Failed to close reader", "error", closeErr)
	}

	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && errors.Is(err, context.Canceled)) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// pump keeps the session polling. A transport failure closes the session and
// is shown to the operator; polling resumes so a reconnect is picked up.
func pump(ctx context.Context, runner Runner, send func(tea.Msg)) {
	for {
		err := runner.Run(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		transportErr := common.IsTransport(err)
		common.LogError(err, "Reader failed", common.Fields{"transport": transportErr})
		msg := errorMsg{err: err}
		if transportErr {
			msg.context = "Connection lost"
		}
		send(msg)
	}
}
