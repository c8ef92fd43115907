package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/nhoffmann/punchout/internal/cli"
	"github.com/nhoffmann/punchout/internal/constants"
	"github.com/nhoffmann/punchout/internal/logger"
	"github.com/nhoffmann/punchout/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Db      string `help:"Database file path." env:"PUNCHOUT_DB" default:"~/.config/punchout/punchout.db"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize the punchout database."`
	Migrate cli.MigrateCmd `cmd:"" help:"Run database migrations."`
	Add     cli.AddCmd     `cmd:"" help:"Add a timesheet entry."`
	List    cli.ListCmd    `cmd:"" help:"List timesheet entries." default:"1"`
	Delete  cli.DeleteCmd  `cmd:"" help:"Delete a pending entry."`
	Submit  cli.SubmitCmd  `cmd:"" help:"Submit pending entries to the timesheet service."`
	Reset   cli.ResetCmd   `cmd:"" help:"Recover entries stuck in progress after a crash."`
	Cred    cli.CredCmd    `cmd:"" help:"Manage service credentials."`
	Login   cli.LoginCmd   `cmd:"" help:"Create a local session."`
	Logout  cli.LogoutCmd  `cmd:"" help:"Clear local sessions."`
	Keyring cli.KeyringCmd `cmd:"" help:"Manage the credential master key in the OS keyring."`
	Backup  struct {
		Create cli.BackupCreateCmd `cmd:"" help:"Create a manual backup." default:"1"`
		List   cli.BackupListCmd   `cmd:"" help:"List available backups."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	vars := kong.Vars{"version": constants.Version}
	for k, v := range cli.DefaultServiceVar() {
		vars[k] = v
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Timesheet entry and submission tool"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		vars,
	)

	dbPath, err := expandPath(CLI.Db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(dbPath),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	store := storage.New(dbPath)
	defer store.Close()

	appCtx := &cli.Context{
		Store: store,
		// Submitter stays nil until a submission backend is linked in;
		// 'submit --dry-run' works regardless
		Debug: CLI.Debug,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
