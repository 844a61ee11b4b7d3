package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/cli"
	"github.com/Veraticus/rfidgate/internal/session"
	"github.com/Veraticus/rfidgate/internal/transport"
)

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <capture>",
		Short: "Replay captured reader output",
		Long: `Feed a file of captured reader output through the access logic as if it came
from the serial port, printing every event. Decisions are journaled when
auditing is enabled.

Use --authorize to trust tags for the duration of the replay.`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}

	cmd.Flags().StringSlice("authorize", nil, "Tags to authorize before replaying")
	cmd.Flags().Int("chunk", transport.DefaultChunkSize, "Bytes delivered per poll")
	cmd.Flags().Duration("delay", 0, "Pause between polls")
	cmd.Flags().Bool("raw", false, "Also print every line received")
	cmd.Flags().Bool("no-progress", false, "Hide the progress bar (hidden anyway when stderr is not a terminal)")

	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	authorize, _ := cmd.Flags().GetStringSlice("authorize")
	chunk, _ := cmd.Flags().GetInt("chunk")
	delay, _ := cmd.Flags().GetDuration("delay")
	raw, _ := cmd.Flags().GetBool("raw")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sinks, cleanup, err := withJournal(ctx, cfg, access.MultiSink{cli.NewPrinter(cmd.OutOrStdout(), cli.WithRawLines(raw))})
	if err != nil {
		return err
	}
	defer cleanup()

	replay := transport.NewReplay(chunk)
	opts := append(sessionOptions(cfg),
		session.WithReadChunk(chunk),
		session.WithInitCommand("", 0),
		session.WithAuthorized(authorize...),
	)
	sess := session.New(replay, sinks, opts...)

	if err := sess.Open(args[0]); err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Warn("Failed to close capture", "error", err)
		}
	}()

	var bar *progressbar.ProgressBar
	if !noProgress && replay.Size() > 0 && cli.IsTerminal(cmd.ErrOrStderr()) {
		bar = progressbar.NewOptions64(replay.Size(),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Replaying"),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
			}),
		)
	}

	records := 0
	for !replay.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := sess.Poll()
		if err != nil {
			return err
		}
		records += n
		if bar != nil {
			_ = bar.Set64(replay.Offset())
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	slog.Info("Replay finished", "capture", args[0], "records", records, "bytes", replay.Offset())
	return nil
}
