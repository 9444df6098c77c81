// Package config provides configuration management for the pod manager.
//
// The config file persists the identity of the pod manager (its UUID and the
// location of its pod) together with discovery tuning. The graph database holds
// what was discovered and can be wiped independently.
//
// Config file locations (priority order):
//  1. $PODM_CONFIG
//  2. ./podm.yaml
//  3. $XDG_CONFIG_HOME/podm/config.yaml
//  4. ~/.config/podm/config.yaml
//  5. /etc/podm/config.yaml
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"podmanager/internal/detection"
	"podmanager/internal/schema"
	"podmanager/internal/topology"
)

// Defaults
const (
	DefaultDatabasePath        = "./podm.db"
	DefaultListen              = ":8080"
	DefaultPodLocation         = "Pod=1"
	DefaultPollInterval        = 30 * time.Second
	DefaultRecheckInterval     = 10 * time.Minute
	DefaultFetchTimeout        = 10 * time.Second
	DefaultMaxResources        = 10000
	DefaultMaxConcurrentPasses = 4
	DefaultNmapTimeout         = 10 * time.Minute
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = DefaultListen
	}
	if c.Pod.Location == "" {
		c.Pod.Location = DefaultPodLocation
	}
	if c.Pod.UUID == "" {
		c.Pod.UUID = uuid.NewString()
	}

	d := &c.Discovery
	if d.PollInterval == 0 {
		d.PollInterval = Duration(DefaultPollInterval)
	}
	if d.RecheckInterval == 0 {
		d.RecheckInterval = Duration(DefaultRecheckInterval)
	}
	if d.FetchTimeout == 0 {
		d.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if d.MaxResources == 0 {
		d.MaxResources = DefaultMaxResources
	}
	if d.MaxConcurrentPasses == 0 {
		d.MaxConcurrentPasses = DefaultMaxConcurrentPasses
	}
	if d.MaxFailedRetries == 0 {
		d.MaxFailedRetries = detection.DefaultMaxFailedRetries
	}
	if d.TruncatePolicy == "" {
		d.TruncatePolicy = string(schema.TruncateAlways)
	}

	l := &c.Detection.Leases
	if l.PSMEPort == 0 {
		l.PSMEPort = detection.DefaultPSMEPort
	}
	if l.RSSPort == 0 {
		l.RSSPort = detection.DefaultRSSPort
	}

	n := &c.Detection.Nmap
	if n.PSMEPort == 0 {
		n.PSMEPort = detection.DefaultPSMEPort
	}
	if n.RSSPort == 0 {
		n.RSSPort = detection.DefaultRSSPort
	}
	if n.Timeout == 0 {
		n.Timeout = Duration(DefaultNmapTimeout)
	}
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := uuid.Parse(c.Pod.UUID); err != nil {
		errs = append(errs, fmt.Errorf("pod.uuid: %w", err))
	}
	if _, err := topology.ParseLocation(c.Pod.Location); err != nil {
		errs = append(errs, fmt.Errorf("pod.location: %w", err))
	}
	switch schema.TruncatePolicy(c.Discovery.TruncatePolicy) {
	case schema.TruncateAlways, schema.TruncateOnChange:
	default:
		errs = append(errs, fmt.Errorf("discovery.truncate_policy: unknown policy %q", c.Discovery.TruncatePolicy))
	}
	if c.Discovery.PollInterval < 0 || c.Discovery.FetchTimeout < 0 {
		errs = append(errs, errors.New("discovery: intervals must not be negative"))
	}
	if c.Detection.Nmap.Enabled && len(c.Detection.Nmap.Targets) == 0 {
		errs = append(errs, errors.New("detection.nmap: enabled without targets"))
	}
	return errors.Join(errs...)
}

// Location returns the parsed pod location
func (c *Config) Location() topology.Location {
	loc, _ := topology.ParseLocation(c.Pod.Location)
	return loc
}

// ParseLevel converts a log level name to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level: unknown level %q", s)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Pod: %s (manager %s), database: %s\n", c.Pod.Location, c.Pod.UUID, c.Database.Path)
	summary += fmt.Sprintf("Poll: %s, fetch timeout: %s, concurrency: %d, retries: %d\n",
		c.Discovery.PollInterval.Duration(), c.Discovery.FetchTimeout.Duration(),
		c.Discovery.MaxConcurrentPasses, c.Discovery.MaxFailedRetries)

	var sources []string
	if c.Detection.ServiceList.Path != "" {
		sources = append(sources, "service_list")
	}
	if c.Detection.Leases.Path != "" {
		sources = append(sources, "leases")
	}
	if c.Detection.Nmap.Enabled {
		sources = append(sources, "nmap")
	}
	if len(sources) == 0 {
		sources = append(sources, "none")
	}
	summary += "Detection: " + strings.Join(sources, ", ")
	return summary
}
