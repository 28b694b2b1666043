package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hmatsuda/renraku/internal/constants"
	"github.com/hmatsuda/renraku/internal/models"
	_ "github.com/lib/pq"
)

type PostgresStore struct {
	connStr string
	db      *sql.DB
	now     func() time.Time
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: connStr,
		now:     time.Now,
	}
}

// HasEmbeddedCredentials reports whether a connection string carries a
// password. Credentials belong in the environment, .pgpass, or the keyring.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil {
		return false
	}
	if u.User != nil {
		if _, set := u.User.Password(); set {
			return true
		}
	}
	return strings.Contains(u.RawQuery, "password=")
}

const postgresSchema = `
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
	id             BIGSERIAL PRIMARY KEY,
	subject        TEXT NOT NULL,
	login_id       TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	trigger_number TEXT NOT NULL DEFAULT '',
	date           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sent_log_subject_date ON sent_log(subject, date);
CREATE TABLE IF NOT EXISTS issue_log (
	id             BIGSERIAL PRIMARY KEY,
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

func (s *PostgresStore) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := s.db.Exec(postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(Settings{Timezone: constants.DefaultTimezone}); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) GetSettings() (Settings, error) {
	var tz string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = 'timezone'").Scan(&tz)
	if err != nil {
		if err == sql.ErrNoRows {
			return Settings{}, fmt.Errorf("settings not found")
		}
		return Settings{}, err
	}
	return Settings{Timezone: tz}, nil
}

func (s *PostgresStore) SaveSettings(settings Settings) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES ('timezone', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		settings.Timezone,
	)
	return err
}

func (s *PostgresStore) Today() (string, error) {
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

func (s *PostgresStore) GetQueue(subject string) ([]models.WorkRow, error) {
	rows, err := s.db.Query(`
		SELECT login_id, name, email, trigger_number, status, note
		FROM queue WHERE subject = $1 ORDER BY pos`, subject)
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

func (s *PostgresStore) UpdateQueueRow(subject string, pos int, row models.WorkRow) error {
	res, err := s.db.Exec(`
		UPDATE queue SET login_id = $1, name = $2, email = $3, trigger_number = $4, status = $5, note = $6
		WHERE subject = $7 AND pos = $8`,
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

func (s *PostgresStore) ApplyLoad(subject string, queue []models.WorkRow, consumedIssueIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM queue WHERE subject = $1", subject); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO queue (subject, pos, login_id, name, email, trigger_number, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
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
		if _, err := tx.Exec("DELETE FROM issue_log WHERE id = $1 AND subject = $2", id, subject); err != nil {
			return fmt.Errorf("failed to prune issue log row %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) ApplyMove(subject string, sent []models.SentLogEntry, issues []models.IssueLogEntry, removePos []int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range sent {
		if _, err := tx.Exec(`
			INSERT INTO sent_log (subject, login_id, name, trigger_number, date)
			VALUES ($1, $2, $3, $4, $5)`,
			e.Subject, e.LoginID, e.Name, e.TriggerNumber, e.Date,
		); err != nil {
			return fmt.Errorf("failed to append sent log entry: %w", err)
		}
	}

	for _, e := range issues {
		if _, err := tx.Exec(`
			INSERT INTO issue_log (subject, login_id, name, trigger_number, note, date, tag)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.Subject, e.LoginID, e.Name, e.TriggerNumber, e.Note, e.Date, string(e.Tag),
		); err != nil {
			return fmt.Errorf("failed to append issue log entry: %w", err)
		}
	}

	for _, pos := range removePos {
		if _, err := tx.Exec("DELETE FROM queue WHERE subject = $1 AND pos = $2", subject, pos); err != nil {
			return fmt.Errorf("failed to remove queue row %d: %w", pos, err)
		}
	}

	// Renumber so positions stay dense and keep matching slice indexes.
	rows, err := tx.Query("SELECT pos FROM queue WHERE subject = $1 ORDER BY pos", subject)
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
		if _, err := tx.Exec("UPDATE queue SET pos = $1 WHERE subject = $2 AND pos = $3", i, subject, pos); err != nil {
			return fmt.Errorf("failed to compact queue: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) ListSentOn(subject, date string) ([]models.SentLogEntry, error) {
	return s.listSent("SELECT subject, login_id, name, trigger_number, date FROM sent_log WHERE subject = $1 AND date = $2 ORDER BY id", subject, date)
}

func (s *PostgresStore) ListSent(subject string) ([]models.SentLogEntry, error) {
	return s.listSent("SELECT subject, login_id, name, trigger_number, date FROM sent_log WHERE subject = $1 ORDER BY id", subject)
}

func (s *PostgresStore) listSent(query string, args ...any) ([]models.SentLogEntry, error) {
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

func (s *PostgresStore) ListIssues(subject string) ([]models.IssueLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, subject, login_id, name, trigger_number, note, date, tag
		FROM issue_log WHERE subject = $1 ORDER BY id`, subject)
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

func (s *PostgresStore) ReplaceSourceRows(subject string, source []models.SourceRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM source_rows WHERE subject = $1", subject); err != nil {
		return fmt.Errorf("failed to clear source rows: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO source_rows (subject, pos, login_id, name, trigger_number, email, action_flag)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
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

func (s *PostgresStore) GetSourceRows(subject string) ([]models.SourceRow, error) {
	rows, err := s.db.Query(`
		SELECT login_id, name, trigger_number, email, action_flag
		FROM source_rows WHERE subject = $1 ORDER BY pos`, subject)
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

func (s *PostgresStore) UpsertRoster(entries []models.RosterEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO roster (login_id, name, email) VALUES ($1, $2, $3)
		ON CONFLICT (login_id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`)
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

func (s *PostgresStore) RosterEmails() (map[string]string, error) {
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

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}
