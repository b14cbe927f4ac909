package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

func printSuccess(msg string) {
	fmt.Println(successStyle.Render("✓ " + msg))
}

// PrintError renders a fatal error for main.
func PrintError(err error) {
	fmt.Println(errorStyle.Render("✗ " + err.Error()))
}
