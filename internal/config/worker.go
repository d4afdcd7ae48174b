package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// WorkerConfig holds configuration for the formulapool worker process.
type WorkerConfig struct {
	Port                int           `yaml:"port"`
	WorkerID            string        `yaml:"worker_id"`
	EngineURL           string        `yaml:"engine_url"`
	EngineCheckInterval time.Duration `yaml:"-"`
	ModelName           string        `yaml:"model_name"`
	LogLevel            string        `yaml:"log_level"`
	ConfigFile          string        `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults. The worker id defaults to
// worker-<port> so a derived pool addresses each slot without extra wiring.
func (c *WorkerConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 5556
	}
	if c.EngineCheckInterval == 0 {
		c.EngineCheckInterval = 15 * time.Second
	}
	if c.ModelName == "" {
		c.ModelName = "PP-FormulaNet_plus-L"
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath("worker.yaml")
	}
}

// LoadFile populates the config from a YAML file.
func (c *WorkerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *WorkerConfig) ApplyEnv() {
	if v := getEnv("CONFIG_FILE", ""); v != "" {
		c.ConfigFile = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := getEnv("WORKER_ID", ""); v != "" {
		c.WorkerID = v
	}
	if v := getEnv("ENGINE_URL", ""); v != "" {
		c.EngineURL = v
	}
	if v := getEnv("ENGINE_CHECK_INTERVAL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.EngineCheckInterval = d
		}
	}
	if v := getEnv("FORMULA_MODEL_NAME", ""); v != "" {
		c.ModelName = v
	}
}

// BindFlagsFromCurrent binds command line flags using the current config values
// as defaults so main can call flag.Parse().
func (c *WorkerConfig) BindFlagsFromCurrent() {
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "worker config file path")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the worker endpoint")
	flag.StringVar(&c.WorkerID, "worker-id", c.WorkerID, "worker identifier reported on the status endpoint")
	flag.StringVar(&c.EngineURL, "engine-url", c.EngineURL, "recognition engine base URL; empty runs the demo engine")
	flag.DurationVar(&c.EngineCheckInterval, "engine-check-interval", c.EngineCheckInterval, "interval between engine health checks")
	flag.StringVar(&c.ModelName, "model-name", c.ModelName, "model name reported on the status endpoint")
}

// Finalize fills derived values after all layers are applied.
func (c *WorkerConfig) Finalize() {
	if c.WorkerID == "" {
		c.WorkerID = fmt.Sprintf("worker-%d", c.Port)
	}
}
