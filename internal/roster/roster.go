// Package roster parses the CSV dashboard exports dropped on the shared
// drive. Columns are located by header name so a re-ordered export keeps
// working; a missing required header aborts the whole import.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hmatsuda/renraku/internal/config"
	"github.com/hmatsuda/renraku/internal/models"
	"github.com/hmatsuda/renraku/internal/reconcile"
)

// Table is the result of one CSV import: the dashboard source rows plus the
// roster entries used for email lookups during re-surfacing.
type Table struct {
	Source []models.SourceRow
	Roster []models.RosterEntry
}

// ParseCSV reads a dashboard export. LoginID, trigger and action columns are
// required; name and email are filled when present. Rows without a login ID
// are skipped (blank padding rows are common in the exports).
func ParseCSV(r io.Reader, cols config.ColumnMap) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // exports pad rows unevenly
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return Table{}, fmt.Errorf("%w: file is empty", reconcile.ErrMissingColumns)
		}
		return Table{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := headerIndex(header)
	loginCol, ok := idx[normalizeHeader(cols.LoginID)]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", reconcile.ErrMissingColumns, cols.LoginID)
	}
	triggerCol, ok := idx[normalizeHeader(cols.Trigger)]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", reconcile.ErrMissingColumns, cols.Trigger)
	}
	actionCol, ok := idx[normalizeHeader(cols.Action)]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", reconcile.ErrMissingColumns, cols.Action)
	}
	nameCol, hasName := idx[normalizeHeader(cols.Name)]
	emailCol, hasEmail := idx[normalizeHeader(cols.Email)]

	var table Table
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read CSV record: %w", err)
		}

		login := models.NormalizeKeyPart(field(record, loginCol))
		if login == "" {
			continue
		}

		row := models.SourceRow{
			LoginID:       login,
			TriggerNumber: models.NormalizeKeyPart(field(record, triggerCol)),
			ActionFlag:    strings.TrimSpace(field(record, actionCol)),
		}
		if hasName {
			row.Name = strings.TrimSpace(field(record, nameCol))
		}
		if hasEmail {
			row.Email = strings.TrimSpace(field(record, emailCol))
		}
		table.Source = append(table.Source, row)

		if row.Email != "" {
			table.Roster = append(table.Roster, models.RosterEntry{
				LoginID: login,
				Name:    row.Name,
				Email:   row.Email,
			})
		}
	}

	return table, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
