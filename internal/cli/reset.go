package cli

import "fmt"

type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *Context) error {
	count, err := ctx.Store.ResetAllInProgress()
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("No in-progress entries to recover")
		return nil
	}
	fmt.Printf("Recovered %d entries back to pending\n", count)
	return nil
}
