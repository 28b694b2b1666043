package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hmatsuda/renraku/internal/classnavi"
	"github.com/hmatsuda/renraku/internal/constants"
	"github.com/hmatsuda/renraku/internal/keyring"
	"github.com/hmatsuda/renraku/internal/logger"
)

type EnrichCmd struct {
	Subject string `arg:"" optional:"" help:"Subject whose queue to enrich; all configured subjects when omitted."`
}

func (c *EnrichCmd) Run(ctx *Context) error {
	if ctx.Config.ClassNavi.BaseURL == "" {
		return fmt.Errorf("ClassNavi is not configured (set classnavi.base_url or CLASSNAVI_BASE_URL)")
	}

	subjects, err := ctx.ResolveSubjects(c.Subject)
	if err != nil {
		return err
	}

	token, err := keyring.GetToken()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Keyring unavailable, falling back to environment", "error", err)
		}
		token = os.Getenv(constants.ClassNaviTokenEnv)
	}

	client := classnavi.New(classnavi.Config{
		BaseURL: ctx.Config.ClassNavi.BaseURL,
		Token:   token,
		Wait:    ctx.Config.ClassNavi.Wait(),
	})

	for _, subject := range subjects {
		filled, skipped, err := enrichSubject(context.Background(), ctx, client, subject)
		if err != nil {
			return fmt.Errorf("enrich failed for %s: %w", subject, err)
		}
		fmt.Printf("%s: filled %d emails (%d skipped)\n", subject, filled, skipped)
	}
	return nil
}

// enrichSubject fills empty emails in one subject's queue from ClassNavi.
// Per-student failures are skipped so one missing profile never blocks the
// rest of the queue.
func enrichSubject(ctx context.Context, cctx *Context, client *classnavi.Client, subject string) (filled, skipped int, err error) {
	queue, err := cctx.Store.GetQueue(subject)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read queue: %w", err)
	}

	first := true
	for pos, row := range queue {
		if row.Email != "" {
			continue
		}
		if !first {
			client.Throttle()
		}
		first = false

		student, err := client.Student(ctx, row.LoginID)
		if err != nil {
			skipped++
			if errors.Is(err, classnavi.ErrNotFound) {
				logger.Warn("No ClassNavi profile", "subject", subject, "login_id", row.LoginID)
			} else {
				logger.Warn("ClassNavi lookup failed", "subject", subject, "login_id", row.LoginID, "error", err)
			}
			continue
		}
		if student.Email == "" {
			skipped++
			continue
		}

		row.Email = student.Email
		if row.Name == "" {
			row.Name = student.Name
		}
		if err := cctx.Store.UpdateQueueRow(subject, pos, row); err != nil {
			return filled, skipped, fmt.Errorf("failed to update row %d: %w", pos, err)
		}
		filled++
	}
	return filled, skipped, nil
}
