package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/cli"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/storage"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled access decisions",
		Long: `Show the access decisions recorded by the monitor, newest first.

--since and --prune-before accept either a duration back from now ("24h",
"30m") or a date ("2006-01-02").

Examples:
  rfidgate history --identifier ABC123
  rfidgate history --verdict Denied --since 24h
  rfidgate history --summary --since 168h
  rfidgate history --prune-before 720h`,
		RunE: runHistory,
	}

	cmd.Flags().String("identifier", "", "Only show decisions for this tag")
	cmd.Flags().String("verdict", "", "Only show Granted or Denied decisions")
	cmd.Flags().String("since", "", "Only show decisions after this point")
	cmd.Flags().Int("limit", 50, "Maximum number of decisions to show (0 for all)")
	cmd.Flags().Bool("summary", false, "Show counts instead of individual decisions")
	cmd.Flags().String("prune-before", "", "Delete decisions older than this point")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	identifier, _ := cmd.Flags().GetString("identifier")
	verdict, _ := cmd.Flags().GetString("verdict")
	sinceFlag, _ := cmd.Flags().GetString("since")
	limit, _ := cmd.Flags().GetInt("limit")
	summary, _ := cmd.Flags().GetBool("summary")
	pruneFlag, _ := cmd.Flags().GetString("prune-before")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if verdict != "" && verdict != access.Granted.String() && verdict != access.Denied.String() {
		return fmt.Errorf("%w: verdict must be %s or %s", common.ErrInvalidConfig, access.Granted, access.Denied)
	}

	now := time.Now()
	since, err := parseSince(sinceFlag, now)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, cleanup, err := getDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if pruneFlag != "" {
		before, err := parseSince(pruneFlag, now)
		if err != nil {
			return err
		}
		removed, err := db.PruneAccessEvents(ctx, before)
		if err != nil {
			return err
		}
		slog.Info("Pruned access journal", "before", before, "removed", removed)
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed %d decision(s) before %s", removed, before.Format(time.DateTime)))) //nolint:forbidigo // User-facing output
		return nil
	}

	if summary {
		s, err := db.GetAccessSummary(ctx, since)
		if err != nil {
			return err
		}
		return cli.RenderSummary(out, s)
	}

	filter := storage.AccessEventFilter{
		Identifier: identifier,
		Verdict:    verdict,
		Limit:      limit,
	}
	if !since.IsZero() {
		filter.Since = &since
	}
	events, err := db.GetAccessEvents(ctx, filter)
	if err != nil {
		return err
	}
	return cli.RenderAccessEvents(out, events)
}

// parseSince reads a point in time as a duration before now or a date. An
// empty value is the zero time.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("%w: negative duration %q", common.ErrInvalidConfig, value)
		}
		return now.Add(-d), nil
	}
	for _, layout := range []string{time.DateOnly, time.DateTime, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is neither a duration nor a date", common.ErrInvalidConfig, value)
}
