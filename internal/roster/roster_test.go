package roster

import (
	"errors"
	"strings"
	"testing"

	"github.com/hmatsuda/renraku/internal/config"
	"github.com/hmatsuda/renraku/internal/reconcile"
)

func TestParseCSV(t *testing.T) {
	cols := config.DefaultColumns()

	t.Run("standard export", func(t *testing.T) {
		csv := strings.Join([]string{
			"Login ID,Student Name,Email,Trigger No.,Action",
			"s1,Alice,a@example.com,3,SEND EMAIL",
			"s2,Bob,,1,",
		}, "\n")

		table, err := ParseCSV(strings.NewReader(csv), cols)
		if err != nil {
			t.Fatalf("ParseCSV() returned unexpected error: %v", err)
		}
		if len(table.Source) != 2 {
			t.Fatalf("ParseCSV() returned %d source rows, want 2", len(table.Source))
		}
		if table.Source[0].LoginID != "s1" || table.Source[0].ActionFlag != "SEND EMAIL" {
			t.Errorf("first row = %+v", table.Source[0])
		}
		if len(table.Roster) != 1 || table.Roster[0].Email != "a@example.com" {
			t.Errorf("roster = %+v, want one entry for s1", table.Roster)
		}
	})

	t.Run("reordered columns", func(t *testing.T) {
		csv := strings.Join([]string{
			"Action,Trigger No.,Login ID",
			"SEND EMAIL,3,s1",
		}, "\n")

		table, err := ParseCSV(strings.NewReader(csv), cols)
		if err != nil {
			t.Fatalf("ParseCSV() returned unexpected error: %v", err)
		}
		if table.Source[0].LoginID != "s1" || table.Source[0].TriggerNumber != "3" {
			t.Errorf("lookup must be by header name, got %+v", table.Source[0])
		}
	})

	t.Run("BOM and header case", func(t *testing.T) {
		csv := "\ufeffLOGIN ID,trigger no.,ACTION\ns1,3,SEND EMAIL\n"
		table, err := ParseCSV(strings.NewReader(csv), cols)
		if err != nil {
			t.Fatalf("ParseCSV() returned unexpected error: %v", err)
		}
		if len(table.Source) != 1 {
			t.Fatalf("ParseCSV() returned %d rows, want 1", len(table.Source))
		}
	})

	t.Run("missing required column", func(t *testing.T) {
		csv := "Login ID,Student Name\ns1,Alice\n"
		_, err := ParseCSV(strings.NewReader(csv), cols)
		if !errors.Is(err, reconcile.ErrMissingColumns) {
			t.Fatalf("ParseCSV() error = %v, want ErrMissingColumns", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""), cols)
		if !errors.Is(err, reconcile.ErrMissingColumns) {
			t.Fatalf("ParseCSV() error = %v, want ErrMissingColumns", err)
		}
	})

	t.Run("blank rows skipped", func(t *testing.T) {
		csv := strings.Join([]string{
			"Login ID,Trigger No.,Action",
			"s1,3,SEND EMAIL",
			",,",
			"   ,2,SEND EMAIL",
		}, "\n")

		table, err := ParseCSV(strings.NewReader(csv), cols)
		if err != nil {
			t.Fatalf("ParseCSV() returned unexpected error: %v", err)
		}
		if len(table.Source) != 1 {
			t.Errorf("ParseCSV() returned %d rows, blank logins must be skipped", len(table.Source))
		}
	})

	t.Run("uneven row lengths", func(t *testing.T) {
		csv := strings.Join([]string{
			"Login ID,Student Name,Email,Trigger No.,Action",
			"s1,Alice",
		}, "\n")

		table, err := ParseCSV(strings.NewReader(csv), cols)
		if err != nil {
			t.Fatalf("ParseCSV() returned unexpected error: %v", err)
		}
		if len(table.Source) != 1 || table.Source[0].TriggerNumber != "" {
			t.Errorf("short rows must parse with empty fields, got %+v", table.Source)
		}
	})

	t.Run("custom column mapping", func(t *testing.T) {
		custom := config.ColumnMap{
			LoginID: "ID",
			Name:    "Name",
			Email:   "Mail",
			Trigger: "Trg",
			Action:  "Act",
		}
		csv := "ID,Trg,Act\ns1,3,SEND EMAIL\n"
		table, err := ParseCSV(strings.NewReader(csv), custom)
		if err != nil {
			t.Fatalf("ParseCSV() returned unexpected error: %v", err)
		}
		if len(table.Source) != 1 {
			t.Errorf("ParseCSV() with custom mapping returned %d rows, want 1", len(table.Source))
		}
	})
}
