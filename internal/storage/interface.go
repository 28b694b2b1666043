package storage

import "github.com/hmatsuda/renraku/internal/models"

// Settings holds the store-level configuration. The timezone drives the
// Today() date bucket used for same-day sent suppression; it belongs to the
// store, not the reconciler, so every client sees the same day boundary.
type Settings struct {
	Timezone string `json:"timezone"`
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error
	// Today returns the current date (YYYY-MM-DD) in the store's configured
	// timezone.
	Today() (string, error)

	// Work queue
	GetQueue(subject string) ([]models.WorkRow, error)
	// UpdateQueueRow replaces the row at a position; used by queue edit.
	UpdateQueueRow(subject string, pos int, row models.WorkRow) error
	// ApplyLoad overwrites the subject's queue and deletes the consumed
	// issue-log rows in one transaction.
	ApplyLoad(subject string, rows []models.WorkRow, consumedIssueIDs []int64) error
	// ApplyMove appends the classified rows to the logs and removes the
	// consumed queue rows by position, all-or-nothing for the subject.
	ApplyMove(subject string, sent []models.SentLogEntry, issues []models.IssueLogEntry, removePos []int) error

	// Logs
	ListSentOn(subject, date string) ([]models.SentLogEntry, error)
	ListSent(subject string) ([]models.SentLogEntry, error)
	ListIssues(subject string) ([]models.IssueLogEntry, error)

	// Dashboard source rows
	ReplaceSourceRows(subject string, rows []models.SourceRow) error
	GetSourceRows(subject string) ([]models.SourceRow, error)

	// Roster
	UpsertRoster(entries []models.RosterEntry) error
	RosterEmails() (map[string]string, error)

	// Utils
	GetConfigPath() string
}
