package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/cli"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/protocol"
	"github.com/Veraticus/rfidgate/internal/session"
	"github.com/Veraticus/rfidgate/internal/transport"
)

// simulatedPort names the in-memory reader in events and the journal.
const simulatedPort = "simulator"

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <event>...",
		Short: "Run the access logic against a scripted reader",
		Long: `Play a script of reader events through the access logic without hardware.
Each event is encoded the way the reader sends it and printed as it is handled.

Events:
  uid:<tag>          a tag is presented
  check:on|off       the reader enables or disables its own check mode
  auth:success|fail  the reader's authentication result

Example:
  rfidgate simulate uid:04A219 check:on uid:04A219 auth:success --authorize 04A219`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSimulate,
	}

	cmd.Flags().StringSlice("authorize", nil, "Tags to authorize before the script runs")
	cmd.Flags().Duration("interval", 0, "Pause between events")
	cmd.Flags().Bool("journal", false, "Record decisions in the journal when auditing is enabled")
	cmd.Flags().Bool("raw", false, "Also print every line received")

	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	authorize, _ := cmd.Flags().GetStringSlice("authorize")
	interval, _ := cmd.Flags().GetDuration("interval")
	journal, _ := cmd.Flags().GetBool("journal")
	raw, _ := cmd.Flags().GetBool("raw")
	ctx := cmd.Context()

	script := make([]protocol.Command, 0, len(args))
	for _, arg := range args {
		c, err := parseEvent(arg)
		if err != nil {
			return err
		}
		script = append(script, c)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sinks := access.MultiSink{cli.NewPrinter(cmd.OutOrStdout(), cli.WithRawLines(raw))}
	if journal {
		var cleanup func()
		sinks, cleanup, err = withJournal(ctx, cfg, sinks)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	pipe := transport.NewPipe()
	opts := append(sessionOptions(cfg),
		session.WithInitCommand("", 0),
		session.WithAuthorized(authorize...),
	)
	sess := session.New(pipe, sinks, opts...)
	if err := sess.Open(simulatedPort); err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Warn("Failed to close simulator", "error", err)
		}
	}()

	for i, c := range script {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		pipe.InjectString(protocol.Format(c))
		for pipe.Buffered() > 0 {
			if _, err := sess.Poll(); err != nil {
				return err
			}
		}
	}

	slog.Info("Simulation finished", "events", len(script), "verdict", sess.State().Verdict.String())
	return nil
}

// parseEvent decodes one script entry such as "uid:04A219".
func parseEvent(arg string) (protocol.Command, error) {
	kind, value, _ := strings.Cut(arg, ":")
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "uid":
		if value != "" {
			return protocol.UIDEvent{ID: value}, nil
		}
	case "check":
		switch value {
		case "on":
			return protocol.SetCheckMode{On: true}, nil
		case "off":
			return protocol.SetCheckMode{On: false}, nil
		}
	case "auth":
		switch value {
		case "success":
			return protocol.AuthResult{Success: true}, nil
		case "fail":
			return protocol.AuthResult{Success: false}, nil
		}
	}
	return nil, fmt.Errorf("%w: event %q", common.ErrInvalidConfig, arg)
}
