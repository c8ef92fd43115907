package cli

import (
	"fmt"

	"github.com/nhoffmann/punchout/internal/backup"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	// Make sure the file exists and is current before copying it
	if _, err := ctx.Store.Handle(); err != nil {
		return err
	}

	manager := backup.NewManager(ctx.Store.Path())
	path, err := manager.Create()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("Nothing to back up yet")
		return nil
	}
	fmt.Printf("Backup created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	manager := backup.NewManager(ctx.Store.Path())
	backups, err := manager.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups found")
		return nil
	}
	for _, b := range backups {
		fmt.Printf("  %s  %8d bytes  %s\n", b.Timestamp.Format("2006-01-02 15:04"), b.Size, b.Path)
	}
	return nil
}
