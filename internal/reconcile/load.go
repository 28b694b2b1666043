package reconcile

import (
	"github.com/hmatsuda/renraku/internal/constants"
	"github.com/hmatsuda/renraku/internal/models"
)

// LoadInput carries everything a Load needs for one subject. SentToday must
// already be filtered to entries dated "today" in the store's timezone.
type LoadInput struct {
	Queue     []models.WorkRow
	Source    []models.SourceRow
	SentToday []models.SentLogEntry
	Issues    []models.IssueLogEntry
	Roster    map[string]string // loginID -> email, for re-surface fallback
}

// LoadResult is the new queue plus the issue-log rows it consumed. The caller
// must overwrite the subject's queue and delete ConsumedIssueIDs in one
// transaction, otherwise a re-run would surface the same issue twice.
type LoadResult struct {
	Queue            []models.WorkRow
	ConsumedIssueIDs []int64
	Counts           LoadCounts
}

// Load merges the current queue, the dashboard source rows and the issue log
// into a deduplicated work queue for one subject.
//
// Order matters: leftovers first (operator edits are never dropped), then
// eligible dashboard rows, then re-surfaced issues. Within each phase the
// first row owning a (loginID, triggerNumber) key wins and later duplicates
// are dropped silently.
func Load(in LoadInput) LoadResult {
	var res LoadResult
	seen := make(map[models.Key]bool)

	sentToday := make(map[string]bool, len(in.SentToday))
	for _, e := range in.SentToday {
		sentToday[models.NormalizeKeyPart(e.LoginID)] = true
	}

	archived := make(map[string]bool)
	issueByKey := make(map[models.Key]models.IssueLogEntry)
	for _, e := range in.Issues {
		switch e.Tag {
		case models.TagIssueArchive:
			archived[models.NormalizeKeyPart(e.LoginID)] = true
		case models.TagIssue:
			if _, ok := issueByKey[e.Key()]; !ok {
				issueByKey[e.Key()] = e
			}
		}
	}

	// Logins the dashboard still flags as action-needed, and the source email
	// per login for the re-surface phase.
	eligible := make(map[string]bool)
	sourceEmail := make(map[string]string)
	for _, src := range in.Source {
		if src.ActionFlag != constants.SendEmailFlag {
			continue
		}
		login := models.NormalizeKeyPart(src.LoginID)
		if login == "" {
			continue
		}
		eligible[login] = true
		if sourceEmail[login] == "" {
			sourceEmail[login] = src.Email
		}
	}

	// Phase 1: preserve leftovers verbatim.
	for _, row := range in.Queue {
		if models.NormalizeKeyPart(row.LoginID) == "" {
			continue
		}
		if seen[row.Key()] {
			res.Counts.SkippedDuplicate++
			continue
		}
		seen[row.Key()] = true
		res.Queue = append(res.Queue, row)
		res.Counts.Kept++
	}

	// Phase 2: pull eligible dashboard rows.
	for _, src := range in.Source {
		if src.ActionFlag != constants.SendEmailFlag {
			continue
		}
		login := models.NormalizeKeyPart(src.LoginID)
		if login == "" {
			continue
		}
		if sentToday[login] {
			res.Counts.SkippedSent++
			continue
		}
		if archived[login] {
			res.Counts.SkippedArchived++
			continue
		}
		key := src.Key()
		if seen[key] {
			res.Counts.SkippedDuplicate++
			continue
		}
		row := models.WorkRow{
			LoginID:       login,
			Name:          src.Name,
			Email:         src.Email,
			TriggerNumber: models.NormalizeKeyPart(src.TriggerNumber),
			Status:        models.StatusNotSent,
		}
		if entry, ok := issueByKey[key]; ok {
			// An unarchived issue matches this exact key: the row comes back
			// as an open issue and the log entry now lives in the queue only.
			row.Status = models.StatusIssue
			row.Note = entry.Note
			res.ConsumedIssueIDs = append(res.ConsumedIssueIDs, entry.ID)
		}
		seen[key] = true
		res.Queue = append(res.Queue, row)
		res.Counts.Admitted++
	}

	// Phase 3: re-surface remaining unarchived issues, but only for students
	// the dashboard still flags as action-needed.
	for _, e := range in.Issues {
		if e.Tag != models.TagIssue {
			continue
		}
		login := models.NormalizeKeyPart(e.LoginID)
		if login == "" || seen[e.Key()] {
			continue
		}
		if !eligible[login] {
			continue
		}
		if sentToday[login] {
			res.Counts.SkippedSent++
			continue
		}
		if archived[login] {
			res.Counts.SkippedArchived++
			continue
		}
		email := sourceEmail[login]
		if email == "" {
			// Roster miss is non-fatal: the row is admitted with an empty
			// email and the operator (or enrich) fills it in later.
			email = in.Roster[login]
		}
		seen[e.Key()] = true
		res.Queue = append(res.Queue, models.WorkRow{
			LoginID:       login,
			Name:          e.Name,
			Email:         email,
			TriggerNumber: models.NormalizeKeyPart(e.TriggerNumber),
			Status:        models.StatusIssue,
			Note:          e.Note,
		})
		res.ConsumedIssueIDs = append(res.ConsumedIssueIDs, e.ID)
		res.Counts.Resurfaced++
	}

	return res
}
