package access

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/swifthaul/access/logger"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

// Config is the deployable configuration for the access layer. The rule set
// itself is compiled in and not configurable; config covers the audit store,
// the portal preference store and logging.
type Config struct {
	Audit AuditConfig `json:"audit" yaml:"audit"`
	Redis RedisConfig `json:"redis" yaml:"redis"`
	Log   LogConfig   `json:"log" yaml:"log"`
}

// AuditConfig selects and tunes the audit store.
type AuditConfig struct {
	Driver        string `json:"driver" yaml:"driver"` // memory | sqlite
	DSN           string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	QueueSize     int    `json:"queue_size" yaml:"queue_size"`
	CacheTTL      int64  `json:"cache_ttl_ms" yaml:"cache_ttl_ms"` // admin read cache
	CacheCounters int64  `json:"cache_num_counters" yaml:"cache_num_counters"`
	CacheMaxCost  int64  `json:"cache_max_cost" yaml:"cache_max_cost"`
}

// RedisConfig locates the portal preference store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`
}

// LogConfig selects the logging backend.
type LogConfig struct {
	Backend string `json:"backend" yaml:"backend"` // phuslu | slog | null
}

// DefaultConfig returns an in-memory, phuslu-logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Audit: AuditConfig{Driver: "memory", QueueSize: defaultAuditQueue},
		Log:   LogConfig{Backend: "phuslu"},
	}
}

// LoadConfigYAML parses a YAML document into a Config on top of defaults.
func LoadConfigYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfigYAML(data)
}

// ToYAML exports the config.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Audit.Driver {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("access: unknown audit driver %q", c.Audit.Driver)
	}
	if c.Audit.Driver == "sqlite" && c.Audit.DSN == "" {
		return fmt.Errorf("access: sqlite audit driver requires a dsn")
	}
	switch c.Log.Backend {
	case "", "phuslu", "slog", "null":
	default:
		return fmt.Errorf("access: unknown log backend %q", c.Log.Backend)
	}
	return nil
}

// EngineOptions translates the config into engine options. Store selection
// happens in the stores package to keep persistence out of the core.
func (c *Config) EngineOptions() []EngineOption {
	opts := []EngineOption{WithAuditQueueSize(c.Audit.QueueSize)}
	switch c.Log.Backend {
	case "slog":
		opts = append(opts, WithLogger(logger.NewSLogLogger(nil)))
	case "null":
		opts = append(opts, WithLogger(logger.NewNullLogger()))
	}
	return opts
}
