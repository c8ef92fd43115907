package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhoffmann/punchout/internal/models"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type ListCmd struct {
	All bool `short:"a" help:"Include submitted entries."`
}

func (c *ListCmd) Run(ctx *Context) error {
	// Heal any entries a crashed submission left claimed before reading
	if _, err := ctx.Store.ResetAllInProgress(); err != nil {
		return err
	}

	pending, err := ctx.Store.GetPending()
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Pending entries"))
	printEntries(pending, pendingStyle)

	if c.All {
		complete, err := ctx.Store.GetForExport()
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(headerStyle.Render("Submitted entries"))
		printEntries(complete, completeStyle)
		printProjectTotals(append(pending, complete...))
		return nil
	}

	printProjectTotals(pending)
	return nil
}

func printEntries(entries []models.Entry, style lipgloss.Style) {
	if len(entries) == 0 {
		fmt.Println(dimStyle.Render("  (none)"))
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("  #%-4d %s  %s-%s  %-20s %s",
			e.ID, e.Date, e.StartClock(), e.EndClock(), e.Project, e.Task)
		if e.ChargeCode != "" {
			line += dimStyle.Render("  [" + e.ChargeCode + "]")
		}
		fmt.Println(style.Render(line))
	}
}

func printProjectTotals(entries []models.Entry) {
	if len(entries) == 0 {
		return
	}

	totals := make(map[string]float64)
	var order []string
	for _, e := range entries {
		if _, seen := totals[e.Project]; !seen {
			order = append(order, e.Project)
		}
		totals[e.Project] += e.Hours
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Hours by project"))
	for _, project := range order {
		bar := strings.Repeat("▪", int(totals[project]))
		fmt.Printf("  %-20s %6.2fh %s\n", project, totals[project], dimStyle.Render(bar))
	}
}
