package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hmatsuda/renraku/internal/models"
)

var (
	subjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	posStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	issueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	sentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

type QueueListCmd struct {
	Subject string `arg:"" optional:"" help:"Subject to list; all configured subjects when omitted."`
}

func (c *QueueListCmd) Run(ctx *Context) error {
	subjects, err := ctx.ResolveSubjects(c.Subject)
	if err != nil {
		return err
	}

	for _, subject := range subjects {
		queue, err := ctx.Store.GetQueue(subject)
		if err != nil {
			return fmt.Errorf("failed to read queue for %s: %w", subject, err)
		}

		fmt.Println(subjectStyle.Render(subject))
		if len(queue) == 0 {
			fmt.Println("  (empty)")
			continue
		}
		for pos, row := range queue {
			status := FormatStatus(row.Status)
			switch row.Status {
			case models.StatusSent:
				status = sentStyle.Render(status)
			case models.StatusIssue, models.StatusIssueArchive:
				status = issueStyle.Render(status)
			}

			fmt.Printf("  %s %s %s (trigger %s) [%s]\n",
				posStyle.Render(fmt.Sprintf("%3d", pos)),
				row.LoginID, row.Name, row.TriggerNumber, status)
			if row.Note != "" {
				fmt.Printf("        note: %s\n", row.Note)
			}
		}
	}
	return nil
}

type QueueEditCmd struct {
	Subject  string `arg:"" help:"Subject whose queue row to edit."`
	Position int    `arg:"" help:"Row position as shown by 'queue list'."`
}

func (c *QueueEditCmd) Run(ctx *Context) error {
	if !ctx.Config.HasSubject(c.Subject) {
		return fmt.Errorf("unknown subject %q", c.Subject)
	}

	queue, err := ctx.Store.GetQueue(c.Subject)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}
	if c.Position < 0 || c.Position >= len(queue) {
		return fmt.Errorf("position %d out of range (queue has %d rows)", c.Position, len(queue))
	}

	row := queue[c.Position]
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.Status]().
				Title(fmt.Sprintf("Status for %s (%s)", row.Name, row.LoginID)).
				Options(
					huh.NewOption("Not sent", models.StatusNotSent),
					huh.NewOption("Sent", models.StatusSent),
					huh.NewOption("Issue", models.StatusIssue),
					huh.NewOption("Issue (archive)", models.StatusIssueArchive),
				).
				Value(&row.Status),
			huh.NewInput().
				Title("Note").
				Value(&row.Note),
			huh.NewInput().
				Title("Email").
				Value(&row.Email),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("edit cancelled: %w", err)
	}

	if err := ctx.Store.UpdateQueueRow(c.Subject, c.Position, row); err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}

	fmt.Printf("Updated %s row %d: %s\n", c.Subject, c.Position, FormatStatus(row.Status))
	return nil
}
