package config

import (
	"time"
)

// Config is the persisted pod manager configuration
type Config struct {
	Version   int             `yaml:"version"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Pod       PodConfig       `yaml:"pod"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Detection DetectionConfig `yaml:"detection"`
}

// DatabaseConfig holds graph store settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	// Level is one of debug, info, warn or error
	Level string `yaml:"level"`
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// PodConfig identifies this pod manager and the pod it manages
type PodConfig struct {
	// Location of the managed pod, e.g. "Pod=1"
	Location string `yaml:"location"`
	// UUID of the pod manager itself, generated on first start
	UUID string `yaml:"uuid,omitempty"`
}

// DiscoveryConfig tunes discovery passes and the detection loop
type DiscoveryConfig struct {
	PollInterval        Duration `yaml:"poll_interval"`
	RecheckInterval     Duration `yaml:"recheck_interval"`
	FetchTimeout        Duration `yaml:"fetch_timeout"`
	MaxResources        int      `yaml:"max_resources"`
	MaxConcurrentPasses int      `yaml:"max_concurrent_passes"`
	MaxFailedRetries    int      `yaml:"max_failed_retries"`
	// TruncatePolicy is always or on_change
	TruncatePolicy string `yaml:"truncate_policy"`
}

// DetectionConfig selects where endpoint candidates come from
type DetectionConfig struct {
	ServiceList ServiceListConfig `yaml:"service_list"`
	Leases      LeasesConfig      `yaml:"leases"`
	Nmap        NmapConfig        `yaml:"nmap"`
}

// ServiceListConfig is a file of service URIs
type ServiceListConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch"`
}

// LeasesConfig is a DHCP leases file announcing services
type LeasesConfig struct {
	Path     string `yaml:"path,omitempty"`
	PSMEPort int    `yaml:"psme_port"`
	RSSPort  int    `yaml:"rss_port"`
}

// NmapConfig is an active port scan of management subnets
type NmapConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Targets           []string `yaml:"targets,omitempty"`
	PSMEPort          int      `yaml:"psme_port"`
	RSSPort           int      `yaml:"rss_port"`
	Timeout           Duration `yaml:"timeout"`
	SkipHostDiscovery bool     `yaml:"skip_host_discovery"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
