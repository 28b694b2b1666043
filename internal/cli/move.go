package cli

import (
	"fmt"

	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/reconcile"
)

type MoveCmd struct {
	Subject string `arg:"" optional:"" help:"Subject to sweep; all configured subjects when omitted."`
}

func (c *MoveCmd) Run(ctx *Context) error {
	subjects, err := ctx.ResolveSubjects(c.Subject)
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	for _, subject := range subjects {
		today, err := ctx.Store.Today()
		if err != nil {
			return err
		}
		queue, err := ctx.Store.GetQueue(subject)
		if err != nil {
			return fmt.Errorf("failed to read queue for %s: %w", subject, err)
		}

		result := reconcile.Move(subject, queue, today)
		if len(result.RemovePos) == 0 {
			fmt.Printf("%s: nothing to move\n", subject)
			continue
		}

		if err := ctx.Store.ApplyMove(subject, result.Sent, result.Issues, result.RemovePos); err != nil {
			return fmt.Errorf("move failed for %s (attempted %d sent, %d issues): %w",
				subject, result.Counts.Sent, result.Counts.Issues, err)
		}

		logger.Info("Move finished", "subject", subject,
			"sent", result.Counts.Sent, "issues", result.Counts.Issues)
		fmt.Printf("%s: moved %d to sent log, %d to issue log (%d rows left in queue)\n",
			subject, result.Counts.Sent, result.Counts.Issues, len(queue)-len(result.RemovePos))
	}
	return nil
}
