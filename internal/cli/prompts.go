package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// promptScenario lets the user pick a scenario file from the scenario
// directory when none was given on the command line.
func promptScenario(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return "", fmt.Errorf("list scenarios in %s: %w", dir, err)
	}
	more, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return "", fmt.Errorf("list scenarios in %s: %w", dir, err)
	}
	matches = append(matches, more...)
	sort.Strings(matches)

	if len(matches) == 0 {
		return "", fmt.Errorf("no scenario files in %s", dir)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select a scenario:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return filepath.Join(dir, selected), nil
}

// promptTicker asks for a stock symbol for the quote command.
func promptTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Stock symbol:",
	}
	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		s, ok := val.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return fmt.Errorf("symbol cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(ticker)), nil
}
