package models

type Tag string

const (
	// TagIssue entries are eligible to be re-surfaced into the work queue.
	TagIssue Tag = "issue"
	// TagIssueArchive entries are permanently suppressed from the work queue
	// but retained for audit.
	TagIssueArchive Tag = "issue_archive"
)

// SentLogEntry records one completed contact. Append-only per subject.
type SentLogEntry struct {
	Subject       string `json:"subject"`
	LoginID       string `json:"login_id"`
	Name          string `json:"name"`
	TriggerNumber string `json:"trigger_number"`
	Date          string `json:"date"` // YYYY-MM-DD in the store's timezone
}

// IssueLogEntry records a contact attempt that hit a problem. ID is the
// store-assigned row identity used when a re-surfaced entry is pruned.
type IssueLogEntry struct {
	ID            int64  `json:"id"`
	Subject       string `json:"subject"`
	LoginID       string `json:"login_id"`
	Name          string `json:"name"`
	TriggerNumber string `json:"trigger_number"`
	Note          string `json:"note,omitempty"`
	Date          string `json:"date"`
	Tag           Tag    `json:"tag"`
}

func (e IssueLogEntry) Key() Key {
	return NewKey(e.LoginID, e.TriggerNumber)
}
