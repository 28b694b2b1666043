package cli

import (
	"fmt"

	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/reconcile"
)

type LoadCmd struct {
	Subject string `arg:"" optional:"" help:"Subject to reconcile; all configured subjects when omitted."`
}

func (c *LoadCmd) Run(ctx *Context) error {
	subjects, err := ctx.ResolveSubjects(c.Subject)
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	for _, subject := range subjects {
		counts, err := LoadSubject(ctx, subject)
		if err != nil {
			return fmt.Errorf("load failed for %s: %w", subject, err)
		}
		fmt.Printf("%s: %d kept, %d admitted, %d re-surfaced (skipped: %d sent today, %d archived, %d duplicate)\n",
			subject, counts.Kept, counts.Admitted, counts.Resurfaced,
			counts.SkippedSent, counts.SkippedArchived, counts.SkippedDuplicate)
	}
	return nil
}

// LoadSubject runs one reconciliation pass for a subject: gather the current
// state, merge, then overwrite the queue and prune consumed issue-log rows in
// a single transaction.
func LoadSubject(ctx *Context, subject string) (reconcile.LoadCounts, error) {
	today, err := ctx.Store.Today()
	if err != nil {
		return reconcile.LoadCounts{}, err
	}

	queue, err := ctx.Store.GetQueue(subject)
	if err != nil {
		return reconcile.LoadCounts{}, fmt.Errorf("failed to read queue: %w", err)
	}
	source, err := ctx.Store.GetSourceRows(subject)
	if err != nil {
		return reconcile.LoadCounts{}, fmt.Errorf("failed to read dashboard rows: %w", err)
	}
	sentToday, err := ctx.Store.ListSentOn(subject, today)
	if err != nil {
		return reconcile.LoadCounts{}, fmt.Errorf("failed to read sent log: %w", err)
	}
	issues, err := ctx.Store.ListIssues(subject)
	if err != nil {
		return reconcile.LoadCounts{}, fmt.Errorf("failed to read issue log: %w", err)
	}
	rosterEmails, err := ctx.Store.RosterEmails()
	if err != nil {
		return reconcile.LoadCounts{}, fmt.Errorf("failed to read roster: %w", err)
	}

	result := reconcile.Load(reconcile.LoadInput{
		Queue:     queue,
		Source:    source,
		SentToday: sentToday,
		Issues:    issues,
		Roster:    rosterEmails,
	})

	if err := ctx.Store.ApplyLoad(subject, result.Queue, result.ConsumedIssueIDs); err != nil {
		return result.Counts, fmt.Errorf("failed to write queue (%d rows staged): %w", len(result.Queue), err)
	}

	logger.Info("Load finished", "subject", subject,
		"kept", result.Counts.Kept, "admitted", result.Counts.Admitted,
		"resurfaced", result.Counts.Resurfaced)
	return result.Counts, nil
}
