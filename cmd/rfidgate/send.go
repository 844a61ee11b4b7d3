package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/cli"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/session"
)

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <command>",
		Short: "Send a command to the reader",
		Long: `Send one command to the reader, terminated by a newline, and print what the
reader answers for a short while.

Example:
  rfidgate send getRFIDMode --port /dev/ttyUSB0`,
		Args: cobra.ExactArgs(1),
		RunE: runSend,
	}

	cmd.Flags().Duration("wait", 2*time.Second, "How long to print replies")

	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	wait, _ := cmd.Flags().GetDuration("wait")
	command := strings.TrimSpace(args[0])
	if command == "" {
		return fmt.Errorf("%w: empty command", common.ErrInvalidConfig)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Serial.Port == "" {
		return common.NewUserError("Set serial.port or pass --port", common.ErrNoPortSelected)
	}

	out := cmd.OutOrStdout()
	printer := cli.NewPrinter(out, cli.WithRawLines(true))
	sess := session.New(newTransport(cfg), access.MultiSink{printer}, append(sessionOptions(cfg), session.WithInitCommand("", 0))...)

	if err := sess.Open(cfg.Serial.Port); err != nil {
		return common.NewUserError("Could not connect to "+cfg.Serial.Port, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Warn("Failed to close reader", "error", err)
		}
	}()

	n, err := sess.Send(command)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Sent %s (%d bytes)", command, n))) //nolint:forbidigo // User-facing output

	if wait <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), wait)
	defer cancel()
	return sess.Run(ctx)
}
