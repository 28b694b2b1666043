package models

import "strings"

type Status string

const (
	StatusNotSent      Status = "not_sent"
	StatusSent         Status = "sent"
	StatusIssue        Status = "issue"
	StatusIssueArchive Status = "issue_archive"
)

// Actionable reports whether a Move should consume a row with this status.
// Blank and not_sent rows stay in the queue.
func (s Status) Actionable() bool {
	return s == StatusSent || s == StatusIssue || s == StatusIssueArchive
}

// WorkRow is one student's pending-contact entry in a subject's work queue.
// The pair (LoginID, TriggerNumber) is unique within one subject's queue.
type WorkRow struct {
	LoginID       string `json:"login_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	TriggerNumber string `json:"trigger_number"`
	Status        Status `json:"status"`
	Note          string `json:"note,omitempty"`
}

func (r WorkRow) Key() Key {
	return NewKey(r.LoginID, r.TriggerNumber)
}

// Key is the composite identity of a queue entry. Both parts are normalized
// so that sources that disagree on whitespace or type still compare equal.
type Key struct {
	LoginID       string
	TriggerNumber string
}

func NewKey(loginID, triggerNumber string) Key {
	return Key{
		LoginID:       NormalizeKeyPart(loginID),
		TriggerNumber: NormalizeKeyPart(triggerNumber),
	}
}

// NormalizeKeyPart trims a key component. Trigger numbers arrive as numbers
// from some sources and strings from others; upstream decoding renders both
// as strings, so trimming is the only remaining normalization.
func NormalizeKeyPart(s string) string {
	return strings.TrimSpace(s)
}
