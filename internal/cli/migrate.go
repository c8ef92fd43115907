package cli

import "fmt"

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	result, err := ctx.Store.Migrate(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return err
	}

	if result.Applied == 0 {
		fmt.Printf("Schema is up to date (version %d)\n", result.ToVersion)
		return nil
	}
	fmt.Printf("Applied %d migration(s): version %d -> %d\n", result.Applied, result.FromVersion, result.ToVersion)
	if result.BackupPath != "" {
		fmt.Printf("Pre-migration backup: %s\n", result.BackupPath)
	}
	return nil
}
