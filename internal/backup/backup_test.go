package backup

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func createTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY); INSERT INTO t VALUES (1)"); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	return dbPath
}

func TestCreateAndList(t *testing.T) {
	dbPath := createTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() returned unexpected error: %v", err)
	}

	// The snapshot is a valid database with the same content
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n); err != nil {
		t.Fatalf("backup is not a usable database: %v", err)
	}
	if n != 1 {
		t.Errorf("backup row count = %d, want 1", n)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() returned unexpected error: %v", err)
	}
	if len(backups) != 1 || backups[0].Path != backupPath {
		t.Errorf("List() = %+v, want the created backup", backups)
	}
	if backups[0].Size == 0 {
		t.Error("List() reported a zero-size backup")
	}
}

func TestCreateSameSecondCollision(t *testing.T) {
	dbPath := createTestDB(t)
	mgr := NewManager(dbPath)

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() returned unexpected error: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() returned unexpected error: %v", err)
	}
	if first == second {
		t.Errorf("two backups in the same second collided on %s", first)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Fatal("Create() should fail when the database does not exist")
	}
}

func TestListEmpty(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "test.db"))
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() returned unexpected error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %+v, want empty", backups)
	}
}
