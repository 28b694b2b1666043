package cli

import (
	"fmt"
	"os"

	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/roster"
)

type ImportCmd struct {
	Subject string `arg:"" help:"Subject the CSV export belongs to."`
	File    string `arg:"" type:"existingfile" help:"Path to the dashboard CSV export."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	if !ctx.Config.HasSubject(c.Subject) {
		return fmt.Errorf("unknown subject %q", c.Subject)
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	table, err := roster.ParseCSV(f, ctx.Config.Columns(c.Subject))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if err := ctx.Store.ReplaceSourceRows(c.Subject, table.Source); err != nil {
		return fmt.Errorf("failed to store dashboard rows: %w", err)
	}
	if err := ctx.Store.UpsertRoster(table.Roster); err != nil {
		return fmt.Errorf("failed to update roster: %w", err)
	}

	logger.Info("Imported dashboard export", "subject", c.Subject, "rows", len(table.Source))
	fmt.Printf("Imported %d dashboard rows for %s (%d roster emails)\n", len(table.Source), c.Subject, len(table.Roster))
	return nil
}
