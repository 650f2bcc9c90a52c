package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/harvestmetrics/mixctl/internal/config"
	"github.com/harvestmetrics/mixctl/internal/engine"
	"github.com/harvestmetrics/mixctl/internal/logging"
)

var (
	// Global flags (wired to config/viper)
	globalCfgFile string
	debug         bool
	// Engine flags (override config if set)
	flagEngineHost       string
	flagEngineTimeoutSec int
	flagFitTimeoutSec    int
	flagRetryMaxAttempts int

	// Loaded configuration
	cfg *cfgpkg.Global
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mixctl",
	Short: "mixctl: fit and report on media mix models",
	Long:  `mixctl orchestrates media mix modeling runs: it loads a dataset configuration, hands the data to the local inference engine for Bayesian fitting, saves the fitted model with its provenance, and renders HTML reports for analysts and stakeholders.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&globalCfgFile, "global-config", "", "settings file (default is ~/.mixctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagEngineHost, "engine-host", "", "inference engine base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagEngineTimeoutSec, "engine-timeout", 0, "engine request timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagFitTimeoutSec, "fit-timeout", 0, "model fit timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(globalCfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("engine-host") && flagEngineHost != "" {
		cfg.EngineHost = flagEngineHost
	}
	if f.Changed("engine-timeout") && flagEngineTimeoutSec > 0 {
		cfg.EngineTimeoutSec = flagEngineTimeoutSec
	}
	if f.Changed("fit-timeout") && flagFitTimeoutSec > 0 {
		cfg.FitTimeoutSec = flagFitTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}

	log, err = logging.New(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to init logger: %v\n", err)
		log = zap.NewNop()
	}
}

// newEngineClient builds the engine client from the effective configuration.
func newEngineClient() *engine.Client {
	return engine.NewClient(
		cfg.EngineHost,
		time.Duration(cfg.EngineTimeoutSec)*time.Second,
		time.Duration(cfg.FitTimeoutSec)*time.Second,
		cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
		time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond,
	)
}
