package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/notify"
	"github.com/hmatsuda/renraku/internal/roster"
	"github.com/hmatsuda/renraku/internal/watcher"
)

type WatchCmd struct {
	Once bool `help:"Run one sync pass and exit instead of staying on the schedule."`
}

func (c *WatchCmd) Run(ctx *Context) error {
	if ctx.Config.Watch.RosterDir == "" {
		return fmt.Errorf("watch.roster_dir is not configured")
	}

	var notifier notify.Client
	if ctx.Config.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(ctx.Config.Telegram.ChatID)
		if err != nil {
			logger.Warn("Telegram notifications disabled", "error", err)
		} else {
			notifier = tg
		}
	}

	w := watcher.New(ctx.Config.Watch.Cron, func() (string, int, error) {
		return syncOnce(ctx)
	}, notifier)

	if c.Once {
		w.RunNow()
		return nil
	}

	if err := w.Start(); err != nil {
		return err
	}
	fmt.Printf("Watching %s on schedule %q (Ctrl-C to stop)\n", ctx.Config.Watch.RosterDir, ctx.Config.Watch.Cron)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	w.Stop()
	return nil
}

// syncOnce imports any <subject>.csv present in the watched directory and
// reconciles that subject's queue. Subjects without an export are skipped.
func syncOnce(ctx *Context) (string, int, error) {
	var parts []string
	newRows := 0

	for _, subject := range ctx.Config.SubjectNames() {
		path := filepath.Join(ctx.Config.Watch.RosterDir, subject+".csv")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", newRows, fmt.Errorf("failed to open %s: %w", path, err)
		}

		table, err := roster.ParseCSV(f, ctx.Config.Columns(subject))
		f.Close()
		if err != nil {
			return "", newRows, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if err := ctx.Store.ReplaceSourceRows(subject, table.Source); err != nil {
			return "", newRows, fmt.Errorf("failed to store dashboard rows for %s: %w", subject, err)
		}
		if err := ctx.Store.UpsertRoster(table.Roster); err != nil {
			return "", newRows, fmt.Errorf("failed to update roster for %s: %w", subject, err)
		}

		ctx.PerformAutomaticBackup()
		counts, err := LoadSubject(ctx, subject)
		if err != nil {
			return "", newRows, err
		}

		added := counts.Admitted + counts.Resurfaced
		newRows += added
		parts = append(parts, fmt.Sprintf("%s: %d new (%d kept)", subject, added, counts.Kept))
	}

	if len(parts) == 0 {
		return "no exports found", 0, nil
	}
	return "renraku sync - " + strings.Join(parts, "; "), newRows, nil
}
