package reconcile

import (
	"testing"

	"github.com/hmatsuda/renraku/internal/models"
)

func TestMoveClassifiesByStatus(t *testing.T) {
	queue := []models.WorkRow{
		{LoginID: "s1", TriggerNumber: "3", Status: models.StatusSent},
		{LoginID: "s2", TriggerNumber: "1", Status: models.StatusNotSent},
		{LoginID: "s3", TriggerNumber: "2", Status: models.StatusIssue, Note: "no reply"},
		{LoginID: "s4", TriggerNumber: "5", Status: models.StatusIssueArchive},
		{LoginID: "s5", TriggerNumber: "6", Status: ""},
	}

	res := Move("math", queue, "2026-08-23")

	if res.Counts.Sent != 1 || res.Counts.Issues != 2 || res.Counts.Skipped != 2 {
		t.Fatalf("Move() counts = %+v, want 1 sent, 2 issues, 2 skipped", res.Counts)
	}

	if res.Sent[0].LoginID != "s1" || res.Sent[0].Date != "2026-08-23" || res.Sent[0].Subject != "math" {
		t.Errorf("sent entry = %+v", res.Sent[0])
	}
	if res.Issues[0].Tag != models.TagIssue || res.Issues[0].Note != "no reply" {
		t.Errorf("issue entry = %+v", res.Issues[0])
	}
	if res.Issues[1].Tag != models.TagIssueArchive {
		t.Errorf("archive entry tag = %q, want %q", res.Issues[1].Tag, models.TagIssueArchive)
	}
}

// Every consumed row ends up in exactly one log, and only consumed rows are
// removed from the queue.
func TestMoveConservation(t *testing.T) {
	queue := []models.WorkRow{
		{LoginID: "s1", TriggerNumber: "1", Status: models.StatusSent},
		{LoginID: "s2", TriggerNumber: "2", Status: models.StatusIssue},
		{LoginID: "s3", TriggerNumber: "3", Status: models.StatusNotSent},
		{LoginID: "s4", TriggerNumber: "4", Status: models.StatusSent},
	}

	res := Move("reading", queue, "2026-08-23")

	if got, want := len(res.Sent)+len(res.Issues), len(res.RemovePos); got != want {
		t.Fatalf("moved %d entries but removing %d rows", got, want)
	}
	if want := []int{0, 1, 3}; len(res.RemovePos) != len(want) {
		t.Fatalf("RemovePos = %v, want %v", res.RemovePos, want)
	} else {
		for i := range want {
			if res.RemovePos[i] != want[i] {
				t.Fatalf("RemovePos = %v, want %v", res.RemovePos, want)
			}
		}
	}
}

func TestMoveSkipsBlankLogin(t *testing.T) {
	queue := []models.WorkRow{
		{LoginID: "  ", TriggerNumber: "1", Status: models.StatusSent},
	}
	res := Move("math", queue, "2026-08-23")
	if len(res.RemovePos) != 0 {
		t.Fatalf("Move() consumed a blank-login row")
	}
	if res.Counts.Skipped != 1 {
		t.Errorf("Counts.Skipped = %d, want 1", res.Counts.Skipped)
	}
}

func TestMoveEmptyQueue(t *testing.T) {
	res := Move("math", nil, "2026-08-23")
	if len(res.Sent) != 0 || len(res.Issues) != 0 || len(res.RemovePos) != 0 {
		t.Fatalf("Move() of empty queue produced %+v", res)
	}
}

// A row marked issue with a note survives a full move/load cycle: the note
// comes back on the queue row and the interim log entry is consumed.
func TestMoveLoadRoundTrip(t *testing.T) {
	queue := []models.WorkRow{
		{LoginID: "s1", Name: "Student s1", TriggerNumber: "3", Status: models.StatusIssue, Note: "X"},
	}
	moved := Move("math", queue, "2026-08-23")
	if len(moved.Issues) != 1 {
		t.Fatalf("Move() logged %d issues, want 1", len(moved.Issues))
	}

	logged := moved.Issues[0]
	logged.ID = 77 // store assigns the row ID on insert

	res := Load(LoadInput{
		Source: []models.SourceRow{sourceRow("s1", "3", "s1@example.com")},
		Issues: []models.IssueLogEntry{logged},
	})

	if len(res.Queue) != 1 {
		t.Fatalf("Load() queue has %d rows, want 1", len(res.Queue))
	}
	row := res.Queue[0]
	if row.Status != models.StatusIssue || row.Note != "X" {
		t.Errorf("round-tripped row = %+v, want issue with note X", row)
	}
	if len(res.ConsumedIssueIDs) != 1 || res.ConsumedIssueIDs[0] != 77 {
		t.Errorf("ConsumedIssueIDs = %v, want [77]", res.ConsumedIssueIDs)
	}
}
