// Package watcher runs the import-and-load sync on a cron schedule so the
// work queue tracks the shared-drive exports without the operator running
// the commands by hand.
package watcher

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/notify"
)

// SyncFunc performs one sync pass and returns a human-readable summary plus
// the number of rows newly admitted to any queue.
type SyncFunc func() (summary string, newRows int, err error)

type Watcher struct {
	engine   *cron.Cron
	spec     string
	sync     SyncFunc
	notifier notify.Client // nil disables notifications
}

func New(spec string, sync SyncFunc, notifier notify.Client) *Watcher {
	return &Watcher{
		engine:   cron.New(cron.WithLocation(time.Local)),
		spec:     spec,
		sync:     sync,
		notifier: notifier,
	}
}

// Start registers the sync job and starts the cron engine.
func (w *Watcher) Start() error {
	if _, err := w.engine.AddFunc(w.spec, w.runOnce); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", w.spec, err)
	}
	w.engine.Start()
	logger.Info("Watcher started", "cron", w.spec)
	return nil
}

// RunNow performs one sync pass outside the schedule.
func (w *Watcher) RunNow() {
	w.runOnce()
}

func (w *Watcher) runOnce() {
	logger.Info("Sync triggered")
	summary, newRows, err := w.sync()
	if err != nil {
		logger.Error("Sync failed", "error", err)
		return
	}
	logger.Info("Sync finished", "new_rows", newRows, "summary", summary)

	if w.notifier == nil || newRows == 0 {
		return
	}
	if err := w.notifier.Send(summary); err != nil {
		// Notification failure never aborts the sync result
		logger.Warn("Failed to notify operator", "error", err)
	}
}

// Stop shuts the engine down and waits for a running job to finish.
func (w *Watcher) Stop() {
	ctx := w.engine.Stop()
	<-ctx.Done()
	logger.Info("Watcher stopped")
}
