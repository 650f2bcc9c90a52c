package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ConfigsDir string `mapstructure:"configs_dir" yaml:"configs_dir"`
	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	OutputsDir string `mapstructure:"outputs_dir" yaml:"outputs_dir"`

	// Modeling engine endpoint and client behavior
	EngineHost       string `mapstructure:"engine_host" yaml:"engine_host"`
	EngineTimeoutSec int    `mapstructure:"engine_timeout_sec" yaml:"engine_timeout_sec"`
	FitTimeoutSec    int    `mapstructure:"fit_timeout_sec" yaml:"fit_timeout_sec"`
	RetryMaxAttempts int    `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int    `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int    `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Seed forwarded to the engine sampler for reproducible runs.
	Seed int `mapstructure:"seed" yaml:"seed"`
}

// Defaults returns a configuration with every field at its default value,
// without touching the filesystem or environment.
func Defaults() *Global {
	return &Global{
		ConfigsDir:       "configs",
		DataDir:          filepath.Join("data", "processed"),
		OutputsDir:       "outputs",
		EngineHost:       "http://127.0.0.1:8089",
		EngineTimeoutSec: 60,
		FitTimeoutSec:    6 * 3600,
		RetryMaxAttempts: 3,
		RetryBaseDelayMs: 500,
		RetryMaxDelayMs:  4000,
		Seed:             42,
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.mixctl/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".mixctl")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("MIXCTL")
	v.AutomaticEnv()

	// Defaults: directory layout matches the project workspace convention.
	v.SetDefault("configs_dir", "configs")
	v.SetDefault("data_dir", filepath.Join("data", "processed"))
	v.SetDefault("outputs_dir", "outputs")
	v.SetDefault("engine_host", "http://127.0.0.1:8089")
	v.SetDefault("engine_timeout_sec", 60)
	// Posterior sampling runs for a long time; the fit call gets its own budget.
	v.SetDefault("fit_timeout_sec", 6*3600)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("seed", 42)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".mixctl")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
