package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hmatsuda/renraku/internal/constants"
	"github.com/hmatsuda/renraku/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
	now  func() time.Time // overridable in tests
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
		now:  time.Now,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS queue (
	subject        TEXT NOT NULL,
	pos            INTEGER NOT NULL,
	login_id       TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	trigger_number TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT '',
	note           TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (subject, pos)
);
CREATE TABLE IF NOT EXISTS sent_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	subject        TEXT NOT NULL,
	login_id       TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	trigger_number TEXT NOT NULL DEFAULT '',
	date           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sent_log_subject_date ON sent_log(subject, date);
CREATE TABLE IF NOT EXISTS issue_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	subject        TEXT NOT NULL,
	login_id       TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	trigger_number TEXT NOT NULL DEFAULT '',
	note           TEXT NOT NULL DEFAULT '',
	date           TEXT NOT NULL,
	tag            TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_issue_log_subject ON issue_log(subject);
CREATE TABLE IF NOT EXISTS source_rows (
	subject        TEXT NOT NULL,
	pos            INTEGER NOT NULL,
	login_id       TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	trigger_number TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	action_flag    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (subject, pos)
);
CREATE TABLE IF NOT EXISTS roster (
	login_id TEXT PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT '',
	email    TEXT NOT NULL DEFAULT ''
);`

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(Settings{Timezone: constants.DefaultTimezone}); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'renraku init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case "timezone":
			settings.Timezone = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return Settings{}, err
	}

	if count == 0 {
		return Settings{}, fmt.Errorf("settings not found")
	}

	return settings, nil
}

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
		"timezone", settings.Timezone,
	)
	return err
}

func (s *SQLiteStore) Today() (string, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return "", fmt.Errorf("failed to read settings: %w", err)
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	return s.now().In(loc).Format(constants.DateFormat), nil
}

func (s *SQLiteStore) GetQueue(subject string) ([]models.WorkRow, error) {
	rows, err := s.db.Query(`
		SELECT login_id, name, email, trigger_number, status, note
		FROM queue WHERE subject = ? ORDER BY pos`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queue []models.WorkRow
	for rows.Next() {
		var r models.WorkRow
		var status string
		if err := rows.Scan(&r.LoginID, &r.Name, &r.Email, &r.TriggerNumber, &status, &r.Note); err != nil {
			return nil, err
		}
		r.Status = models.Status(status)
		queue = append(queue, r)
	}
	return queue, rows.Err()
}

func (s *SQLiteStore) UpdateQueueRow(subject string, pos int, row models.WorkRow) error {
	res, err := s.db.Exec(`
		UPDATE queue SET login_id = ?, name = ?, email = ?, trigger_number = ?, status = ?, note = ?
		WHERE subject = ? AND pos = ?`,
		row.LoginID, row.Name, row.Email, row.TriggerNumber, string(row.Status), row.Note,
		subject, pos,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no queue row at position %d for subject %s", pos, subject)
	}
	return nil
}

func (s *SQLiteStore) ApplyLoad(subject string, queue []models.WorkRow, consumedIssueIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM queue WHERE subject = ?", subject); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO queue (subject, pos, login_id, name, email, trigger_number, status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, r := range queue {
		if _, err := stmt.Exec(subject, pos, r.LoginID, r.Name, r.Email, r.TriggerNumber, string(r.Status), r.Note); err != nil {
			return fmt.Errorf("failed to insert queue row %d: %w", pos, err)
		}
	}

	for _, id := range consumedIssueIDs {
		if _, err := tx.Exec("DELETE FROM issue_log WHERE id = ? AND subject = ?", id, subject); err != nil {
			return fmt.Errorf("failed to prune issue log row %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ApplyMove(subject string, sent []models.SentLogEntry, issues []models.IssueLogEntry, removePos []int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range sent {
		if _, err := tx.Exec(`
			INSERT INTO sent_log (subject, login_id, name, trigger_number, date)
			VALUES (?, ?, ?, ?, ?)`,
			e.Subject, e.LoginID, e.Name, e.TriggerNumber, e.Date,
		); err != nil {
			return fmt.Errorf("failed to append sent log entry: %w", err)
		}
	}

	for _, e := range issues {
		if _, err := tx.Exec(`
			INSERT INTO issue_log (subject, login_id, name, trigger_number, note, date, tag)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Subject, e.LoginID, e.Name, e.TriggerNumber, e.Note, e.Date, string(e.Tag),
		); err != nil {
			return fmt.Errorf("failed to append issue log entry: %w", err)
		}
	}

	for _, pos := range removePos {
		if _, err := tx.Exec("DELETE FROM queue WHERE subject = ? AND pos = ?", subject, pos); err != nil {
			return fmt.Errorf("failed to remove queue row %d: %w", pos, err)
		}
	}

	if err := compactQueue(tx, subject); err != nil {
		return err
	}

	return tx.Commit()
}

// compactQueue renumbers the remaining rows so positions stay dense and keep
// matching slice indexes on the next GetQueue.
func compactQueue(tx *sql.Tx, subject string) error {
	rows, err := tx.Query("SELECT pos FROM queue WHERE subject = ? ORDER BY pos", subject)
	if err != nil {
		return err
	}
	var positions []int
	for rows.Next() {
		var pos int
		if err := rows.Scan(&pos); err != nil {
			rows.Close()
			return err
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for i, pos := range positions {
		if i == pos {
			continue
		}
		if _, err := tx.Exec("UPDATE queue SET pos = ? WHERE subject = ? AND pos = ?", i, subject, pos); err != nil {
			return fmt.Errorf("failed to compact queue: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListSentOn(subject, date string) ([]models.SentLogEntry, error) {
	return s.listSent("SELECT subject, login_id, name, trigger_number, date FROM sent_log WHERE subject = ? AND date = ? ORDER BY id", subject, date)
}

func (s *SQLiteStore) ListSent(subject string) ([]models.SentLogEntry, error) {
	return s.listSent("SELECT subject, login_id, name, trigger_number, date FROM sent_log WHERE subject = ? ORDER BY id", subject)
}

func (s *SQLiteStore) listSent(query string, args ...any) ([]models.SentLogEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SentLogEntry
	for rows.Next() {
		var e models.SentLogEntry
		if err := rows.Scan(&e.Subject, &e.LoginID, &e.Name, &e.TriggerNumber, &e.Date); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) ListIssues(subject string) ([]models.IssueLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, subject, login_id, name, trigger_number, note, date, tag
		FROM issue_log WHERE subject = ? ORDER BY id`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.IssueLogEntry
	for rows.Next() {
		var e models.IssueLogEntry
		var tag string
		if err := rows.Scan(&e.ID, &e.Subject, &e.LoginID, &e.Name, &e.TriggerNumber, &e.Note, &e.Date, &tag); err != nil {
			return nil, err
		}
		e.Tag = models.Tag(tag)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) ReplaceSourceRows(subject string, source []models.SourceRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM source_rows WHERE subject = ?", subject); err != nil {
		return fmt.Errorf("failed to clear source rows: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO source_rows (subject, pos, login_id, name, trigger_number, email, action_flag)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, r := range source {
		if _, err := stmt.Exec(subject, pos, r.LoginID, r.Name, r.TriggerNumber, r.Email, r.ActionFlag); err != nil {
			return fmt.Errorf("failed to insert source row %d: %w", pos, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetSourceRows(subject string) ([]models.SourceRow, error) {
	rows, err := s.db.Query(`
		SELECT login_id, name, trigger_number, email, action_flag
		FROM source_rows WHERE subject = ? ORDER BY pos`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var source []models.SourceRow
	for rows.Next() {
		var r models.SourceRow
		if err := rows.Scan(&r.LoginID, &r.Name, &r.TriggerNumber, &r.Email, &r.ActionFlag); err != nil {
			return nil, err
		}
		source = append(source, r)
	}
	return source, rows.Err()
}

func (s *SQLiteStore) UpsertRoster(entries []models.RosterEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO roster (login_id, name, email) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.LoginID, e.Name, e.Email); err != nil {
			return fmt.Errorf("failed to upsert roster entry %s: %w", e.LoginID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) RosterEmails() (map[string]string, error) {
	rows, err := s.db.Query("SELECT login_id, email FROM roster")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make(map[string]string)
	for rows.Next() {
		var login, email string
		if err := rows.Scan(&login, &email); err != nil {
			return nil, err
		}
		emails[models.NormalizeKeyPart(login)] = email
	}
	return emails, rows.Err()
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
