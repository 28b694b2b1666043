// Package config loads the operator-editable configuration: subjects and
// their CSV column mappings, ClassNavi access, and the watch schedule.
// Values come from a YAML file plus environment variables (a .env file is
// honored when present); the environment wins for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hmatsuda/renraku/internal/constants"
)

// ColumnMap names the CSV headers carrying each dashboard field. Lookup is
// by header name, never by position.
type ColumnMap struct {
	LoginID string `yaml:"login_id"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Trigger string `yaml:"trigger"`
	Action  string `yaml:"action"`
}

// DefaultColumns matches the headers of the shared-drive dashboard exports.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		LoginID: "Login ID",
		Name:    "Student Name",
		Email:   "Email",
		Trigger: "Trigger No.",
		Action:  "Action",
	}
}

type Subject struct {
	Name    string    `yaml:"name"`
	Columns ColumnMap `yaml:"columns"`
}

type ClassNavi struct {
	BaseURL string `yaml:"base_url"`
	WaitMS  int    `yaml:"wait_ms"`
}

// Wait returns the inter-call delay for ClassNavi requests.
func (c ClassNavi) Wait() time.Duration {
	if c.WaitMS <= 0 {
		return constants.ClassNaviDefaultWait
	}
	return time.Duration(c.WaitMS) * time.Millisecond
}

type Watch struct {
	Cron      string `yaml:"cron"`
	RosterDir string `yaml:"roster_dir"`
}

type Telegram struct {
	ChatID int64 `yaml:"chat_id"`
}

type Config struct {
	Subjects  []Subject `yaml:"subjects"`
	ClassNavi ClassNavi `yaml:"classnavi"`
	Watch     Watch     `yaml:"watch"`
	Telegram  Telegram  `yaml:"telegram"`
}

// SubjectNames returns the configured subject names in declaration order.
func (c *Config) SubjectNames() []string {
	names := make([]string, 0, len(c.Subjects))
	for _, s := range c.Subjects {
		names = append(names, s.Name)
	}
	return names
}

// Columns returns the column mapping for a subject, defaulting when the
// subject omits one.
func (c *Config) Columns(subject string) ColumnMap {
	for _, s := range c.Subjects {
		if s.Name == subject {
			return mergeColumns(s.Columns)
		}
	}
	return DefaultColumns()
}

// HasSubject reports whether the subject is configured.
func (c *Config) HasSubject(subject string) bool {
	for _, s := range c.Subjects {
		if s.Name == subject {
			return true
		}
	}
	return false
}

func mergeColumns(cols ColumnMap) ColumnMap {
	def := DefaultColumns()
	if cols.LoginID == "" {
		cols.LoginID = def.LoginID
	}
	if cols.Name == "" {
		cols.Name = def.Name
	}
	if cols.Email == "" {
		cols.Email = def.Email
	}
	if cols.Trigger == "" {
		cols.Trigger = def.Trigger
	}
	if cols.Action == "" {
		cols.Action = def.Action
	}
	return cols
}

// Default returns the configuration used when no YAML file exists: the two
// standard subjects with the standard dashboard headers.
func Default() *Config {
	return &Config{
		Subjects: []Subject{
			{Name: "math", Columns: DefaultColumns()},
			{Name: "reading", Columns: DefaultColumns()},
		},
		Watch: Watch{Cron: "0 7 * * *"},
	}
}

// Load reads the YAML config at path, falling back to Default when the file
// does not exist. A .env file in the working directory is loaded first;
// existing environment variables are never overridden.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return applyEnv(cfg), nil
			}
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		for i := range cfg.Subjects {
			cfg.Subjects[i].Columns = mergeColumns(cfg.Subjects[i].Columns)
		}
		if len(cfg.Subjects) == 0 {
			return nil, fmt.Errorf("config defines no subjects")
		}
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("CLASSNAVI_BASE_URL"); v != "" {
		cfg.ClassNavi.BaseURL = v
	}
	if v := os.Getenv("RENRAKU_WATCH_CRON"); v != "" {
		cfg.Watch.Cron = v
	}
	return cfg
}
