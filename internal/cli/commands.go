package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivyxu/EquityGo/config"
	"github.com/ivyxu/EquityGo/internal/cache"
	"github.com/ivyxu/EquityGo/internal/equity"
	"github.com/ivyxu/EquityGo/internal/logging"
	"github.com/ivyxu/EquityGo/internal/plan"
	"github.com/ivyxu/EquityGo/internal/price"
	"github.com/ivyxu/EquityGo/internal/report"
	"github.com/ivyxu/EquityGo/internal/storage"
	"github.com/ivyxu/EquityGo/internal/tax"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "equitygo",
		Short: "EquityGo - Equity Compensation Projection",
		Long: `EquityGo projects the multi-year financial consequences of holding and
acting on employee equity compensation (ISO, NSO, RSU): cash position,
tax liability including AMT, charitable deduction carryforward, and
pledge obligations under a company match program.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if err := logging.Setup(cfg.Debug); err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}
			return cfg.EnsureDirectories()
		},
	}

	rootCmd.AddCommand(newProjectCmd(cfg))
	rootCmd.AddCommand(newValidateCmd(cfg))
	rootCmd.AddCommand(newQuoteCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

// newProjectCmd creates the project command
func newProjectCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project [SCENARIO]",
		Short: "Run a multi-year projection for a scenario",
		Long: `Replay a scenario's planned actions year by year and report cash, tax,
charitable, and pledge state for every simulated year.
Example: equitygo project scenarios/exercise-all.yaml --profile profile.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarioPath, err := resolveScenario(cfg, args)
			if err != nil {
				return err
			}
			res, err := runProjection(cfg, cmd, scenarioPath)
			if err != nil {
				return err
			}

			fmt.Print(report.Render(res))
			if showLots, _ := cmd.Flags().GetBool("lots"); showLots {
				fmt.Print(report.RenderLots(res))
			}
			if err := writeOutputs(cmd, cfg, res); err != nil {
				return err
			}

			if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
				return saveRun(cfg, res)
			}
			return nil
		},
	}

	cmd.Flags().String("profile", "", "Profile file (defaults to the configured profile path)")
	cmd.Flags().Bool("lots", false, "Show the final-year lot ledger")
	cmd.Flags().String("csv", "", "Write the yearly detail as CSV to the given file")
	cmd.Flags().String("json", "", "Write the full projection result as JSON to the given file")
	cmd.Flags().Bool("copy", false, "Copy the CSV report to the clipboard")
	cmd.Flags().Bool("no-save", false, "Skip recording the run in the history database")

	return cmd
}

// newValidateCmd creates the validate command
func newValidateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [SCENARIO]",
		Short: "Validate a scenario without running it",
		Long: `Check a scenario against its profile: lot construction invariants,
unknown lot references, over-quantity actions, and actions outside the
plan window. Nothing is simulated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarioPath, err := resolveScenario(cfg, args)
			if err != nil {
				return err
			}
			p, err := assemblePlan(cfg, cmd, scenarioPath)
			if err != nil {
				return err
			}
			if err := plan.Preflight(p); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s is valid: %d lots, %d actions, years %d-%d",
				scenarioPath, len(p.Lots), len(p.Actions), p.StartYear, p.EndYear))
			return nil
		},
	}
	cmd.Flags().String("profile", "", "Profile file (defaults to the configured profile path)")
	return cmd
}

// newQuoteCmd creates the quote command
func newQuoteCmd(cfg *config.Config) *cobra.Command {
	quotes := cache.NewQuoteCache(price.Spot, cache.DefaultQuoteTTL)

	return &cobra.Command{
		Use:   "quote [SYMBOL]",
		Short: "Fetch the current market price for a symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := cfg.Ticker
			if len(args) == 1 {
				symbol = args[0]
			}
			if symbol == "" {
				var err error
				symbol, err = promptTicker()
				if err != nil {
					return err
				}
			}
			p, err := quotes.Get(symbol)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", symbol, p.StringFixed(2))
			return nil
		},
	}
}

// newHistoryCmd creates the history command
func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded projection runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(historyPath(cfg))
			if err != nil {
				return err
			}
			defer store.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no recorded runs")
				return nil
			}

			fmt.Printf("%-5s %-28s %-20s %-10s %14s %14s %16s\n",
				"ID", "Plan", "Recorded", "Years", "Tax", "Donated", "Net Worth")
			for _, r := range runs {
				fmt.Printf("%-5d %-28s %-20s %-10s %14s %14s %16s\n",
					r.ID, r.Name, r.CreatedAt.Format("2006-01-02 15:04"),
					fmt.Sprintf("%d-%d", r.StartYear, r.EndYear),
					r.TotalTax, r.TotalDonated, r.FinalNetWorth)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			printSuccess("configuration is valid")
			return nil
		},
	})

	return configCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("EquityGo v1.0.0")
			fmt.Println("Equity Compensation Projection Engine")
		},
	}
}

// resolveScenario picks the scenario path from args, falling back to
// an interactive prompt over the configured scenario directory.
func resolveScenario(cfg *config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return promptScenario(cfg.ScenarioDir)
}

// assemblePlan loads the profile and scenario and builds the validated
// engine plan with the default rate table's snapshot.
func assemblePlan(cfg *config.Config, cmd *cobra.Command, scenarioPath string) (equity.Plan, error) {
	profilePath, _ := cmd.Flags().GetString("profile")
	if profilePath == "" {
		profilePath = cfg.ProfilePath
	}

	profile, err := plan.LoadProfile(profilePath)
	if err != nil {
		return equity.Plan{}, err
	}
	scenario, err := plan.LoadScenario(scenarioPath)
	if err != nil {
		return equity.Plan{}, err
	}
	return plan.Build(profile, scenario, tax.DefaultRateTable().Snapshot())
}

// runProjection assembles and projects one scenario.
func runProjection(cfg *config.Config, cmd *cobra.Command, scenarioPath string) (*equity.ProjectionResult, error) {
	p, err := assemblePlan(cfg, cmd, scenarioPath)
	if err != nil {
		return nil, err
	}
	if err := plan.Preflight(p); err != nil {
		return nil, err
	}

	projector := equity.NewProjector(tax.NewCalculator(tax.DefaultRateTable()))
	return projector.Project(p)
}

func historyPath(cfg *config.Config) string {
	return filepath.Join(cfg.ResultsDir, "history.db")
}

// saveRun records a completed projection in the history database.
func saveRun(cfg *config.Config, res *equity.ProjectionResult) error {
	store, err := storage.Open(historyPath(cfg))
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	id, err := store.SaveRun(res)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("run recorded as #%d", id))
	return nil
}

// writeOutputs handles the --csv, --json, and --copy flags.
func writeOutputs(cmd *cobra.Command, cfg *config.Config, res *equity.ProjectionResult) error {
	if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
		if !filepath.IsAbs(csvPath) {
			csvPath = filepath.Join(cfg.ResultsDir, csvPath)
		}
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("create csv file: %w", err)
		}
		defer f.Close()
		if err := report.WriteCSV(f, res); err != nil {
			return err
		}
		printSuccess("wrote " + csvPath)
	}

	if jsonPath, _ := cmd.Flags().GetString("json"); jsonPath != "" {
		if !filepath.IsAbs(jsonPath) {
			jsonPath = filepath.Join(cfg.ResultsDir, jsonPath)
		}
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode projection result: %w", err)
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			return fmt.Errorf("write json file: %w", err)
		}
		printSuccess("wrote " + jsonPath)
	}

	if copyFlag, _ := cmd.Flags().GetBool("copy"); copyFlag {
		if err := report.CopyCSV(res); err != nil {
			return err
		}
		printSuccess("report copied to clipboard")
	}
	return nil
}
