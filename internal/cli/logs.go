package cli

import (
	"fmt"
)

type LogsSentCmd struct {
	Subject string `arg:"" help:"Subject whose sent log to show."`
	Date    string `help:"Limit to one date (YYYY-MM-DD)."`
}

func (c *LogsSentCmd) Run(ctx *Context) error {
	if !ctx.Config.HasSubject(c.Subject) {
		return fmt.Errorf("unknown subject %q", c.Subject)
	}

	entries, err := ctx.Store.ListSent(c.Subject)
	if err != nil {
		return fmt.Errorf("failed to read sent log: %w", err)
	}
	if c.Date != "" {
		entries, err = ctx.Store.ListSentOn(c.Subject, c.Date)
		if err != nil {
			return fmt.Errorf("failed to read sent log: %w", err)
		}
	}

	if len(entries) == 0 {
		fmt.Println("No sent entries")
		return nil
	}
	fmt.Printf("Sent log for %s:\n", c.Subject)
	for _, e := range entries {
		fmt.Printf("  %s  %s %s (trigger %s)\n", e.Date, e.LoginID, e.Name, e.TriggerNumber)
	}
	return nil
}

type LogsIssuesCmd struct {
	Subject string `arg:"" help:"Subject whose issue log to show."`
}

func (c *LogsIssuesCmd) Run(ctx *Context) error {
	if !ctx.Config.HasSubject(c.Subject) {
		return fmt.Errorf("unknown subject %q", c.Subject)
	}

	entries, err := ctx.Store.ListIssues(c.Subject)
	if err != nil {
		return fmt.Errorf("failed to read issue log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No issue entries")
		return nil
	}

	fmt.Printf("Issue log for %s:\n", c.Subject)
	for _, e := range entries {
		tag := string(e.Tag)
		fmt.Printf("  %s  %s %s (trigger %s) [%s]\n", e.Date, e.LoginID, e.Name, e.TriggerNumber, tag)
		if e.Note != "" {
			fmt.Printf("        note: %s\n", e.Note)
		}
	}
	return nil
}
