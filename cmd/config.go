package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/harvestmetrics/mixctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set mixctl settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("configs_dir: %s\n", cfg.ConfigsDir)
		fmt.Printf("data_dir: %s\n", cfg.DataDir)
		fmt.Printf("outputs_dir: %s\n", cfg.OutputsDir)
		fmt.Printf("engine_host: %s\n", cfg.EngineHost)
		fmt.Printf("engine_timeout_sec: %d\n", cfg.EngineTimeoutSec)
		fmt.Printf("fit_timeout_sec: %d\n", cfg.FitTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Printf("seed: %d\n", cfg.Seed)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(globalCfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "configs_dir":
			cfg.ConfigsDir = val
		case "data_dir":
			cfg.DataDir = val
		case "outputs_dir":
			cfg.OutputsDir = val
		case "engine_host":
			cfg.EngineHost = val
		case "engine_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for engine_timeout_sec: %v", val)
			}
			cfg.EngineTimeoutSec = i
		case "fit_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for fit_timeout_sec: %v", val)
			}
			cfg.FitTimeoutSec = i
		case "retry_max_attempts":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for retry_max_attempts: %v", val)
			}
			cfg.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for retry_base_delay_ms: %v", val)
			}
			cfg.RetryBaseDelayMs = i
		case "retry_max_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for retry_max_delay_ms: %v", val)
			}
			cfg.RetryMaxDelayMs = i
		case "seed":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			cfg.Seed = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, globalCfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
