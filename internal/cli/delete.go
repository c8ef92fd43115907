package cli

import "fmt"

type DeleteCmd struct {
	ID int64 `arg:"" help:"ID of the pending entry to delete."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.DeletePending(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted entry #%d\n", c.ID)
	return nil
}
