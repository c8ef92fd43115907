package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/nhoffmann/punchout/internal/constants"
	"github.com/nhoffmann/punchout/internal/submit"
)

type SubmitCmd struct {
	Service string `help:"Credential service name to submit with." default:"${default_service}"`
	DryRun  bool   `help:"Show what would be submitted without contacting the service."`
}

func (c *SubmitCmd) Run(ctx *Context) error {
	if c.DryRun {
		return c.preview(ctx)
	}

	if ctx.Submitter == nil {
		return fmt.Errorf("no submission service configured in this build; use --dry-run to preview pending entries")
	}

	// Ctrl-C aborts the external call; claimed entries are reverted
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	orch := submit.New(ctx.Store, ctx.Submitter, c.Service)
	summary, err := orch.Run(runCtx, func(done, total int, message string) {
		fmt.Printf("  [%d/%d] %s\n", done, total, message)
	})
	if err != nil {
		return err
	}

	if summary.Submitted == 0 && summary.Claimed == 0 {
		fmt.Println("Nothing pending to submit")
		return nil
	}
	fmt.Printf("Submitted %d entries (%d reverted to pending)\n", summary.Submitted, summary.Reverted)
	return nil
}

func (c *SubmitCmd) preview(ctx *Context) error {
	pending, err := ctx.Store.GetPending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("Nothing pending to submit")
		return nil
	}
	fmt.Printf("Would submit %d entries using credential %q:\n", len(pending), c.Service)
	for _, e := range pending {
		fmt.Printf("  #%-4d %s %s-%s %s (%s)\n", e.ID, e.Date, e.StartClock(), e.EndClock(), e.Project, e.Task)
	}
	return nil
}

// DefaultServiceVar is wired into kong so the flag default stays in one place.
func DefaultServiceVar() map[string]string {
	return map[string]string{"default_service": constants.DefaultService}
}
