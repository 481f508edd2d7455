package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CurrentVersion is the config file format version.
const CurrentVersion = 1

// Config is the effective homedash configuration.
// Field tags serve both viper (mapstructure) and the YAML writer.
type Config struct {
	Version        int           `yaml:"version" mapstructure:"version"`
	BackendURL     string        `yaml:"backend_url" mapstructure:"backend_url"`
	PollInterval   time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	LogLevel       string        `yaml:"log_level,omitempty" mapstructure:"log_level"`
	LogFile        string        `yaml:"log_file,omitempty" mapstructure:"log_file"`

	Grafana   GrafanaConfig   `yaml:"grafana" mapstructure:"grafana"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Simulator SimulatorConfig `yaml:"simulator" mapstructure:"simulator"`

	// Backends are controllers remembered from earlier scans, keyed by
	// instance name
	Backends map[string]*Backend `yaml:"backends,omitempty" mapstructure:"backends"`
}

// GrafanaConfig locates the Grafana instance serving the sensor panels.
type GrafanaConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	From     string `yaml:"from" mapstructure:"from"`
	To       string `yaml:"to" mapstructure:"to"`
	Refresh  string `yaml:"refresh" mapstructure:"refresh"`
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// DiscoveryConfig tunes the mDNS scan.
type DiscoveryConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Service string        `yaml:"service" mapstructure:"service"`
	Domain  string        `yaml:"domain" mapstructure:"domain"`
}

// SimulatorConfig configures homedash-sim.
type SimulatorConfig struct {
	Listen    string        `yaml:"listen" mapstructure:"listen"`
	Advertise bool          `yaml:"advertise" mapstructure:"advertise"`
	Name      string        `yaml:"name" mapstructure:"name"`
	ArmDelay  time.Duration `yaml:"arm_delay" mapstructure:"arm_delay"`
	PIN       string        `yaml:"pin" mapstructure:"pin"`
}

// Backend is a remembered controller.
type Backend struct {
	URL      string    `yaml:"url" mapstructure:"url"`
	LastSeen time.Time `yaml:"last_seen,omitempty" mapstructure:"last_seen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:        CurrentVersion,
		BackendURL:     "http://127.0.0.1:5001",
		PollInterval:   time.Second,
		RequestTimeout: 3 * time.Second,
		Grafana: GrafanaConfig{
			BaseURL:  "http://localhost:3000",
			From:     "now-1h",
			To:       "now",
			Refresh:  "1s",
			Timezone: "browser",
		},
		Discovery: DiscoveryConfig{
			Timeout: 5 * time.Second,
			Service: "_homedash._tcp",
			Domain:  "local.",
		},
		Simulator: SimulatorConfig{
			Listen:    "127.0.0.1:5001",
			Advertise: false,
			Name:      "homedash-sim",
			ArmDelay:  10 * time.Second,
			PIN:       "1234",
		},
		Backends: map[string]*Backend{},
	}
}

// Validate checks values that would otherwise fail later with a less
// helpful error.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend_url %q: want http(s)://host[:port]", c.BackendURL)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}

	if c.Grafana.BaseURL != "" && !strings.HasPrefix(c.Grafana.BaseURL, "http") {
		return fmt.Errorf("invalid grafana.base_url %q", c.Grafana.BaseURL)
	}

	return nil
}

// RememberBackend records a discovered controller.
func (c *Config) RememberBackend(name, baseURL string, seen time.Time) {
	if c.Backends == nil {
		c.Backends = make(map[string]*Backend)
	}
	c.Backends[name] = &Backend{URL: baseURL, LastSeen: seen}
}

// ResolveBackend maps a remembered backend name to its URL. Anything that
// is not a remembered name is returned unchanged.
func (c *Config) ResolveBackend(nameOrURL string) string {
	if b, ok := c.Backends[nameOrURL]; ok && b != nil {
		return b.URL
	}
	return nameOrURL
}
