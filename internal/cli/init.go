package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type InitCmd struct {
	Force    bool   `help:"Force reset by deleting the existing database before initialization."`
	Timezone string `help:"Timezone used for the daily sent-log bucket." default:"Asia/Tokyo"`
}

func (c *InitCmd) Run(ctx *Context) error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if strings.HasPrefix(dbPath, "postgres://") || strings.HasPrefix(dbPath, "postgresql://") {
			return fmt.Errorf("--force is only supported for file-backed stores")
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	settings.Timezone = c.Timezone
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Printf("Initialized renraku storage at: %s (timezone %s)\n", ctx.Store.GetConfigPath(), c.Timezone)
	return nil
}
