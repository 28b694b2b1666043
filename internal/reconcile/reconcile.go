// Package reconcile holds the pure merge/dedup/classification logic behind
// the load and move commands. It never talks to the store or the clock; the
// caller supplies rows and the store's notion of "today" and applies the
// returned mutations atomically.
package reconcile

import "errors"

// ErrMissingColumns is returned when a source table lacks required fields.
// Fatal per subject: the surrounding load/move aborts and reports it.
var ErrMissingColumns = errors.New("required columns missing from source table")

// LoadCounts summarizes one Load for operator reporting.
type LoadCounts struct {
	Kept             int // leftover rows preserved verbatim
	Admitted         int // eligible dashboard rows merged in
	Resurfaced       int // issue-log entries re-admitted
	SkippedSent      int // suppressed by a same-day sent-log entry
	SkippedArchived  int // suppressed by an issue_archive tag
	SkippedDuplicate int // dropped by first-seen-wins dedup
}

// MoveCounts summarizes one Move for operator reporting.
type MoveCounts struct {
	Sent    int
	Issues  int
	Skipped int // blank or not-yet-actionable rows left in place
}
