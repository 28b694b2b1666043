package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/hmatsuda/renraku/internal/cli"
	"github.com/hmatsuda/renraku/internal/config"
	"github.com/hmatsuda/renraku/internal/constants"
	"github.com/hmatsuda/renraku/internal/errors"
	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/storage"
)

var CLI struct {
	Version    kong.VersionFlag
	Debug      bool   `help:"Enable debug logging to stderr."`
	Config     string `help:"Database file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables or .pgpass instead." type:"string" default:"~/.config/renraku/renraku.db"`
	ConfigFile string `help:"YAML configuration file (subjects, columns, ClassNavi, watch schedule)." type:"string" default:"~/.config/renraku/renraku.yaml"`

	Init   cli.InitCmd   `cmd:"" help:"Initialize renraku storage."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Import cli.ImportCmd `cmd:"" help:"Import a dashboard CSV export."`
	Load   cli.LoadCmd   `cmd:"" help:"Reconcile work queues against dashboard rows and logs."`
	Move   cli.MoveCmd   `cmd:"" help:"Sweep handled queue rows into the sent and issue logs."`
	Enrich cli.EnrichCmd `cmd:"" help:"Fill missing queue emails from ClassNavi."`
	Watch  cli.WatchCmd  `cmd:"" help:"Sync exports on a cron schedule."`
	Queue  struct {
		List cli.QueueListCmd `cmd:"" help:"Show a work queue." default:"1"`
		Edit cli.QueueEditCmd `cmd:"" help:"Edit one queue row interactively."`
	} `cmd:"" help:"Inspect and edit work queues."`
	Logs struct {
		Sent   cli.LogsSentCmd   `cmd:"" help:"Show the sent log."`
		Issues cli.LogsIssuesCmd `cmd:"" help:"Show the issue log."`
	} `cmd:"" help:"Show the append-only logs."`
	Backup struct {
		Create cli.BackupCreateCmd `cmd:"" help:"Create a manual backup." default:"1"`
		List   cli.BackupListCmd   `cmd:"" help:"List available backups."`
	} `cmd:"" help:"Manage database backups."`
	Token struct {
		Set    cli.TokenSetCmd    `cmd:"" help:"Store the ClassNavi API token in the OS keyring." default:"1"`
		Delete cli.TokenDeleteCmd `cmd:"" help:"Remove the stored ClassNavi API token."`
	} `cmd:"" help:"Manage the ClassNavi API token."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Tutoring-center contact tracker: reconciles dashboard exports into per-subject work queues"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	dbPath := expandHome(CLI.Config)

	var store storage.Provider
	isPostgres := strings.HasPrefix(CLI.Config, "postgres://") || strings.HasPrefix(CLI.Config, "postgresql://")
	if isPostgres {
		// Connection string detected - refuse embedded credentials
		if storage.HasEmbeddedCredentials(CLI.Config) {
			fmt.Fprintf(os.Stderr, "❌ Error: PostgreSQL connection strings with embedded credentials are NOT allowed.\n")
			fmt.Fprintf(os.Stderr, "       Use one of these secure alternatives:\n")
			fmt.Fprintf(os.Stderr, "       1. Environment:   export PGPASSWORD=...\n")
			fmt.Fprintf(os.Stderr, "       2. .pgpass file:  Use connection string without password: \"postgresql://user@host:5432/renraku\"\n")
			os.Exit(1)
		}
		store = storage.NewPostgresStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(dbPath)
	}

	logDir := filepath.Dir(dbPath)
	if isPostgres {
		logDir = expandHome("~/.config/renraku")
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(expandHome(CLI.ConfigFile))
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:  store,
		Config: cfg,
	}

	// Load the store before running the command (init handles its own setup)
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
		defer store.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
