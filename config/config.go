package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the application-level configuration: where scenarios and
// profiles live and where results go. Simulation inputs themselves are
// per-scenario files, not config.
type Config struct {
	ScenarioDir string `json:"scenario_dir"`
	ResultsDir  string `json:"results_dir"`
	ProfilePath string `json:"profile_path"`

	Ticker string `json:"ticker"`
	Debug  bool   `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()
	return cfg
}

func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ScenarioDir: filepath.Join(root, "scenarios"),
		ResultsDir:  filepath.Join(root, "results"),
		ProfilePath: filepath.Join(root, "profile.yaml"),
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("EQUITYGO_SCENARIO_DIR"); val != "" {
		c.ScenarioDir = val
	}
	if val := os.Getenv("EQUITYGO_RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("EQUITYGO_PROFILE"); val != "" {
		c.ProfilePath = val
	}
	if val := os.Getenv("EQUITYGO_TICKER"); val != "" {
		c.Ticker = val
	}
	if val := os.Getenv("EQUITYGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ScenarioDir) == "" {
		return fmt.Errorf("config: empty scenario dir")
	}
	if strings.TrimSpace(c.ResultsDir) == "" {
		return fmt.Errorf("config: empty results dir")
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ScenarioDir, c.ResultsDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
