package cli

import (
	"fmt"
	"strings"

	"github.com/hmatsuda/renraku/internal/backup"
	"github.com/hmatsuda/renraku/internal/config"
	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/models"
	"github.com/hmatsuda/renraku/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Config *config.Config
}

// PerformAutomaticBackup snapshots the store before a destructive write and
// silently handles errors. Only file-backed stores are snapshotted.
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") {
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt the operator's workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveSubjects returns the requested subject, or every configured subject
// when the argument is empty.
func (c *Context) ResolveSubjects(subject string) ([]string, error) {
	if subject == "" {
		return c.Config.SubjectNames(), nil
	}
	if !c.Config.HasSubject(subject) {
		return nil, fmt.Errorf("unknown subject %q (configured: %s)", subject, strings.Join(c.Config.SubjectNames(), ", "))
	}
	return []string{subject}, nil
}

// FormatStatus renders a queue status for display.
func FormatStatus(s models.Status) string {
	switch s {
	case models.StatusNotSent, "":
		return "not sent"
	case models.StatusSent:
		return "sent"
	case models.StatusIssue:
		return "issue"
	case models.StatusIssueArchive:
		return "issue (archive)"
	default:
		return string(s)
	}
}
