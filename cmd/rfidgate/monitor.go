package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/cli"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/config"
	"github.com/Veraticus/rfidgate/internal/session"
	"github.com/Veraticus/rfidgate/internal/tui"
	"github.com/Veraticus/rfidgate/internal/tui/themes"
)

func monitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the reader and decide access",
		Long: `Connect to the reader and decide access for every presented tag.

By default an interactive monitor shows the connection, check mode, current
tag and verdict, the provisional and authorized tag lists and every line the
reader sends. Use --plain for a line-oriented log; it is also used when
stdout is not a terminal.`,
		RunE: runMonitor,
	}

	cmd.Flags().Bool("plain", false, "Print events instead of starting the interactive monitor")
	cmd.Flags().Bool("raw", false, "With --plain, also print every line received")

	return cmd
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	raw, _ := cmd.Flags().GetBool("raw")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !plain && !cli.IsTerminal(out) {
		slog.Info("Output is not a terminal, printing events instead")
		plain = true
	}
	if plain {
		return runPlainMonitor(cmd.Context(), cfg, out, raw)
	}
	return runInteractiveMonitor(cmd.Context(), cfg)
}

func runPlainMonitor(ctx context.Context, cfg *config.Config, out io.Writer, raw bool) error {
	if cfg.Serial.Port == "" {
		return common.NewUserError("Set serial.port or pass --port", common.ErrNoPortSelected)
	}

	sinks, cleanup, err := withJournal(ctx, cfg, access.MultiSink{cli.NewPrinter(out, cli.WithRawLines(raw))})
	if err != nil {
		return err
	}
	defer cleanup()

	opts := append(sessionOptions(cfg), session.WithInitCommand(cfg.Serial.InitCommand, cfg.Serial.InitDelay))
	sess := session.New(newTransport(cfg), sinks, opts...)

	if err := sess.Open(cfg.Serial.Port); err != nil {
		return common.NewUserError("Could not connect to "+cfg.Serial.Port, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Warn("Failed to close reader", "error", err)
		}
	}()

	handler := cli.NewInterruptHandler(out)
	ctx = handler.HandleInterrupts(ctx, "")

	if err := sess.Run(ctx); err != nil {
		if common.IsTransport(err) {
			return common.NewUserError("Lost connection to "+cfg.Serial.Port, err)
		}
		return fmt.Errorf("reader stopped: %w", err)
	}
	return nil
}

func runInteractiveMonitor(ctx context.Context, cfg *config.Config) error {
	theme, ok := themes.ByName(cfg.TUI.Theme)
	if !ok {
		return fmt.Errorf("%w: unknown theme %q", common.ErrInvalidConfig, cfg.TUI.Theme)
	}

	// The monitor owns the terminal, so logs go to a file.
	logFile, err := common.OpenLogFile(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	if err := common.SetupLogger(logFile, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}

	sink := tui.NewSink()
	sinks, cleanup, err := withJournal(ctx, cfg, access.MultiSink{sink})
	if err != nil {
		return err
	}
	defer cleanup()

	opts := append(sessionOptions(cfg), session.WithInitCommand(cfg.Serial.InitCommand, cfg.Serial.InitDelay))
	sess := session.New(newTransport(cfg), sinks, opts...)

	slog.Info("Starting monitor", "port", cfg.Serial.Port, "audit", cfg.Audit.Enabled)
	return tui.Run(ctx, sess, sess, sink,
		tui.WithTheme(theme),
		tui.WithPort(cfg.Serial.Port),
		tui.WithPortLister(listPorts),
		tui.WithInitCommand(cfg.Serial.InitCommand),
	)
}
