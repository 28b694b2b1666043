package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	names := cfg.SubjectNames()
	if len(names) != 2 || names[0] != "math" || names[1] != "reading" {
		t.Errorf("Default() subjects = %v, want [math reading]", names)
	}
	if !cfg.HasSubject("math") || cfg.HasSubject("latin") {
		t.Error("HasSubject() mismatch on default config")
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if len(cfg.Subjects) != 2 {
			t.Errorf("Load() of missing file returned %d subjects, want defaults", len(cfg.Subjects))
		}
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "renraku.yaml")
		yaml := `subjects:
  - name: math
    columns:
      login_id: "ID"
  - name: science
classnavi:
  base_url: https://navi.example.com
  wait_ms: 200
watch:
  cron: "30 6 * * *"
  roster_dir: /srv/exports
telegram:
  chat_id: 12345
`
		if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if !cfg.HasSubject("science") {
			t.Error("Load() dropped a configured subject")
		}

		cols := cfg.Columns("math")
		if cols.LoginID != "ID" {
			t.Errorf("Columns(math).LoginID = %q, want override", cols.LoginID)
		}
		if cols.Trigger != "Trigger No." {
			t.Errorf("Columns(math).Trigger = %q, unset columns must keep defaults", cols.Trigger)
		}

		if cfg.ClassNavi.Wait() != 200*time.Millisecond {
			t.Errorf("ClassNavi.Wait() = %v, want 200ms", cfg.ClassNavi.Wait())
		}
		if cfg.Watch.Cron != "30 6 * * *" || cfg.Watch.RosterDir != "/srv/exports" {
			t.Errorf("watch config = %+v", cfg.Watch)
		}
		if cfg.Telegram.ChatID != 12345 {
			t.Errorf("telegram chat_id = %d, want 12345", cfg.Telegram.ChatID)
		}
	})

	t.Run("empty subject list rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "renraku.yaml")
		if err := os.WriteFile(path, []byte("subjects: []\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("Load() should reject a config with no subjects")
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CLASSNAVI_BASE_URL", "https://env.example.com")
		t.Setenv("RENRAKU_WATCH_CRON", "0 9 * * *")

		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.ClassNavi.BaseURL != "https://env.example.com" {
			t.Errorf("ClassNavi.BaseURL = %q, want env override", cfg.ClassNavi.BaseURL)
		}
		if cfg.Watch.Cron != "0 9 * * *" {
			t.Errorf("Watch.Cron = %q, want env override", cfg.Watch.Cron)
		}
	})
}

func TestClassNaviWaitDefault(t *testing.T) {
	var c ClassNavi
	if c.Wait() != 1500*time.Millisecond {
		t.Errorf("Wait() = %v, want default 1.5s", c.Wait())
	}
}
