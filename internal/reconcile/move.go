package reconcile

import "github.com/hmatsuda/renraku/internal/models"

// MoveResult classifies one subject's queue. RemovePos holds the queue
// positions (slice indexes, which the store keeps as row positions) of every
// consumed row; removal is by position, not by key, so the store deletes
// exactly the rows that were logged.
type MoveResult struct {
	Sent      []models.SentLogEntry
	Issues    []models.IssueLogEntry
	RemovePos []int
	Counts    MoveCounts
}

// Move classifies every queue row by status. Rows marked sent go to the sent
// log, rows marked issue or issue_archive go to the issue log with the status
// as tag, everything else stays untouched. today must come from the store's
// timezone, never the process clock.
func Move(subject string, queue []models.WorkRow, today string) MoveResult {
	var res MoveResult
	for pos, row := range queue {
		if models.NormalizeKeyPart(row.LoginID) == "" || !row.Status.Actionable() {
			res.Counts.Skipped++
			continue
		}
		switch row.Status {
		case models.StatusSent:
			res.Sent = append(res.Sent, models.SentLogEntry{
				Subject:       subject,
				LoginID:       models.NormalizeKeyPart(row.LoginID),
				Name:          row.Name,
				TriggerNumber: models.NormalizeKeyPart(row.TriggerNumber),
				Date:          today,
			})
			res.Counts.Sent++
		case models.StatusIssue, models.StatusIssueArchive:
			res.Issues = append(res.Issues, models.IssueLogEntry{
				Subject:       subject,
				LoginID:       models.NormalizeKeyPart(row.LoginID),
				Name:          row.Name,
				TriggerNumber: models.NormalizeKeyPart(row.TriggerNumber),
				Note:          row.Note,
				Date:          today,
				Tag:           models.Tag(row.Status),
			})
			res.Counts.Issues++
		}
		res.RemovePos = append(res.RemovePos, pos)
	}
	return res
}
