package cli

import "fmt"

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if _, err := ctx.Store.Handle(); err != nil {
		return err
	}
	fmt.Printf("Initialized punchout database at: %s\n", ctx.Store.Path())
	return nil
}
