package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// WorkerEndpoint names one slot of the fixed worker pool.
type WorkerEndpoint struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// ServerConfig holds configuration for the formulapool balancer.
// Durations are set through environment variables or flags, not the YAML file.
type ServerConfig struct {
	Port                int              `yaml:"port"`
	NumWorkers          int              `yaml:"num_workers"`
	WorkerHost          string           `yaml:"worker_host"`
	WorkerBasePort      int              `yaml:"worker_base_port"`
	Workers             []WorkerEndpoint `yaml:"workers"`
	HealthCheckInterval time.Duration    `yaml:"-"`
	ProbeTimeout        time.Duration    `yaml:"-"`
	RequestTimeout      time.Duration    `yaml:"-"`
	StartupWait         time.Duration    `yaml:"-"`
	AllowedOrigins      []string         `yaml:"allowed_origins"`
	LogLevel            string           `yaml:"log_level"`
	ConfigFile          string           `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults.
func (c *ServerConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 5555
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = 2
	}
	if c.WorkerHost == "" {
		c.WorkerHost = "localhost"
	}
	if c.WorkerBasePort == 0 {
		c.WorkerBasePort = 5556
	}
	if c.HealthCheckInterval == 0 {
		c.HealthCheckInterval = 5 * time.Second
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 3 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 120 * time.Second
	}
	if c.StartupWait == 0 {
		c.StartupWait = 120 * time.Second
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath("server.yaml")
	}
}

// LoadFile populates the config from a YAML file.
func (c *ServerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *ServerConfig) ApplyEnv() {
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
	if v := getEnv("NUM_WORKERS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NumWorkers = n
		}
	}
	if v := getEnv("WORKER_HOST", ""); v != "" {
		c.WorkerHost = v
	}
	if v := getEnv("WORKER_BASE_PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WorkerBasePort = n
		}
	}
	if v := getEnv("HEALTH_CHECK_INTERVAL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HealthCheckInterval = d
		}
	}
	if v := getEnv("PROBE_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ProbeTimeout = d
		}
	}
	if v := getEnv("REQUEST_TIMEOUT", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestTimeout = time.Duration(f * float64(time.Second))
		}
	}
	if v := getEnv("STARTUP_WAIT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.StartupWait = d
		}
	}
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
}

// BindFlagsFromCurrent binds command line flags using the current config values
// as defaults so main can call flag.Parse().
func (c *ServerConfig) BindFlagsFromCurrent() {
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the balancer API")
	flag.IntVar(&c.NumWorkers, "num-workers", c.NumWorkers, "number of workers in the pool when no explicit list is configured")
	flag.StringVar(&c.WorkerHost, "worker-host", c.WorkerHost, "host used to derive worker endpoint URLs")
	flag.IntVar(&c.WorkerBasePort, "worker-base-port", c.WorkerBasePort, "port of the first worker; worker i listens on base+i")
	flag.DurationVar(&c.HealthCheckInterval, "health-check-interval", c.HealthCheckInterval, "interval between worker health probes")
	flag.DurationVar(&c.ProbeTimeout, "probe-timeout", c.ProbeTimeout, "timeout for a single worker status probe")
	flag.Func("request-timeout", "per-job timeout in seconds", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.RequestTimeout = time.Duration(f * float64(time.Second))
		return nil
	})
	flag.DurationVar(&c.StartupWait, "startup-wait", c.StartupWait, "how long to wait for workers to come up before reporting readiness")
	flag.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
}

// WorkerEndpoints resolves the worker pool in stable order. An explicit
// workers list from the config file wins; otherwise endpoints are derived
// from NumWorkers, WorkerHost and WorkerBasePort.
func (c *ServerConfig) WorkerEndpoints() []WorkerEndpoint {
	if len(c.Workers) > 0 {
		eps := make([]WorkerEndpoint, len(c.Workers))
		for i, w := range c.Workers {
			eps[i] = w
			if eps[i].ID == "" {
				eps[i].ID = fmt.Sprintf("worker-%d", i+1)
			}
		}
		return eps
	}
	eps := make([]WorkerEndpoint, 0, c.NumWorkers)
	for i := 0; i < c.NumWorkers; i++ {
		eps = append(eps, WorkerEndpoint{
			ID:  fmt.Sprintf("worker-%d", i+1),
			URL: fmt.Sprintf("http://%s:%d", c.WorkerHost, c.WorkerBasePort+i),
		})
	}
	return eps
}
