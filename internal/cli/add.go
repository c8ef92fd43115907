package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/nhoffmann/punchout/internal/constants"
	"github.com/nhoffmann/punchout/internal/models"
	"github.com/nhoffmann/punchout/internal/validation"
)

type AddCmd struct {
	Project    string `short:"p" help:"Project name."`
	Task       string `short:"t" help:"Task description."`
	Date       string `short:"d" help:"Entry date (YYYY-MM-DD, defaults to today)."`
	Start      string `short:"s" help:"Start time (HH:MM)."`
	End        string `short:"e" help:"End time (HH:MM)."`
	Tool       string `help:"Tool used (optional)."`
	ChargeCode string `help:"Charge code (optional)."`
}

func (c *AddCmd) Run(ctx *Context) error {
	if c.Date == "" {
		c.Date = time.Now().Format(constants.DateFormat)
	}

	// Fall back to an interactive form when the required fields are not
	// given as flags
	if c.Project == "" || c.Task == "" || c.Start == "" || c.End == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	startMin, err := validation.ParseClock(c.Start)
	if err != nil {
		return err
	}
	endMin, err := validation.ParseClock(c.End)
	if err != nil {
		return err
	}

	entry := models.Entry{
		Date:       c.Date,
		StartMin:   startMin,
		EndMin:     endMin,
		Project:    c.Project,
		Task:       c.Task,
		Tool:       c.Tool,
		ChargeCode: c.ChargeCode,
	}

	result, err := ctx.Store.Insert(entry)
	if err != nil {
		return err
	}
	if result.Duplicate {
		fmt.Printf("Entry already exists for %s %s %s (%s) - nothing added\n",
			entry.Date, entry.StartClock(), entry.Project, entry.Task)
		return nil
	}
	fmt.Printf("Added entry #%d: %s %s-%s %s (%.2fh)\n",
		result.ID, entry.Date, entry.StartClock(), entry.EndClock(), entry.Project, entry.DerivedHours())
	return nil
}

func (c *AddCmd) prompt() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project").
				Value(&c.Project).
				Validate(required("project")),
			huh.NewInput().
				Title("Task description").
				Value(&c.Task).
				Validate(required("task")),
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Value(&c.Date),
			huh.NewInput().
				Title("Start (HH:MM)").
				Value(&c.Start).
				Validate(clockField),
			huh.NewInput().
				Title("End (HH:MM)").
				Value(&c.End).
				Validate(clockField),
			huh.NewInput().
				Title("Tool (optional)").
				Value(&c.Tool),
			huh.NewInput().
				Title("Charge code (optional)").
				Value(&c.ChargeCode),
		),
	)
	return form.Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func clockField(s string) error {
	_, err := validation.ParseClock(s)
	return err
}
