package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ivyxu/EquityGo/internal/equity"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1).
			MarginBottom(1)

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	headerRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)
)

// Render formats a projection result as a terminal report: one row per
// year plus a derived summary block.
func Render(res *equity.ProjectionResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Projection: %s", res.PlanName)))
	b.WriteString("\n")

	header := fmt.Sprintf("%-6s %10s %14s %14s %12s %14s %12s %16s",
		"Year", "Price", "Cash", "Tax", "AMT", "Donated", "Match", "Net Worth")
	rows := []string{headerRowStyle.Render(header)}
	for _, y := range res.Years {
		rows = append(rows, fmt.Sprintf("%-6d %10s %14s %14s %12s %14s %12s %16s",
			y.Year,
			y.SharePrice.StringFixed(2),
			y.EndingCash.StringFixed(0),
			y.TaxPaid.StringFixed(0),
			y.AMTTax.StringFixed(0),
			y.DonationValue.StringFixed(0),
			y.CompanyMatch.StringFixed(0),
			y.NetWorth.StringFixed(0),
		))
	}
	b.WriteString(tableStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n\n")

	s := res.Summary
	summary := []string{
		fmt.Sprintf("Total tax paid      %s", s.TotalTax.StringFixed(0)),
		fmt.Sprintf("Total donated       %s", s.TotalDonated.StringFixed(0)),
		fmt.Sprintf("Company match       %s", s.TotalMatch.StringFixed(0)),
		fmt.Sprintf("Sale proceeds       %s", s.TotalProceeds.StringFixed(0)),
		fmt.Sprintf("Final cash          %s", s.FinalCash.StringFixed(0)),
		fmt.Sprintf("Final net worth     %s", s.FinalNetWorth.StringFixed(0)),
		fmt.Sprintf("Shares sold/donated %d / %d", s.SharesSold, s.SharesDonated),
		fmt.Sprintf("Pledge fulfilled    %d of %d", s.PledgeFulfilled, s.PledgeObligated),
	}
	b.WriteString(summaryStyle.Render(strings.Join(summary, "\n")))
	b.WriteString("\n")

	if s.PledgeExpired > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf(
			"⚠ %d pledged shares expired unfulfilled", s.PledgeExpired)))
		b.WriteString("\n")
	}
	if last := lastYear(res); last != nil && last.Pledge.UncreditedShares > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf(
			"⚠ %d donated shares were not credited against any open pledge", last.Pledge.UncreditedShares)))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderLots formats the final-year lot ledger: lifecycle state plus
// cumulative sold/donated counts per lot, so state and transition
// timelines can be reconstructed without re-running the simulation.
func RenderLots(res *equity.ProjectionResult) string {
	last := lastYear(res)
	if last == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Lots at end of %d", last.Year)))
	b.WriteString("\n")

	header := fmt.Sprintf("%-28s %-6s %10s %10s %-24s %-12s",
		"Lot", "Type", "Qty", "Strike", "Lifecycle", "Class")
	rows := []string{headerRowStyle.Render(header)}
	for _, id := range last.Lots.SortedIDs() {
		lot := last.Lots[id]
		rows = append(rows, fmt.Sprintf("%-28s %-6s %10d %10s %-24s %-12s",
			lot.ID,
			strings.ToUpper(string(lot.Instrument)),
			lot.Quantity,
			lot.Strike.StringFixed(2),
			lot.Lifecycle,
			lot.TaxClass,
		))
	}
	b.WriteString(tableStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")
	return b.String()
}

func lastYear(res *equity.ProjectionResult) *equity.YearlyState {
	if len(res.Years) == 0 {
		return nil
	}
	return &res.Years[len(res.Years)-1]
}
