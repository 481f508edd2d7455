package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override,
// e.g. HOMEDASH_BACKEND_URL or HOMEDASH_GRAFANA_BASE_URL.
const EnvPrefix = "HOMEDASH"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"backend":         "backend_url",
	"poll-interval":   "poll_interval",
	"request-timeout": "request_timeout",
	"log-level":       "log_level",
	"log-file":        "log_file",
	"grafana-url":     "grafana.base_url",
	"scan-timeout":    "discovery.timeout",
	"listen":          "simulator.listen",
	"advertise":       "simulator.advertise",
	"pin":             "simulator.pin",
	"arm-delay":       "simulator.arm_delay",
}

// Loader resolves the effective configuration from, in priority order,
// bound flags, HOMEDASH_* environment variables, the config file and
// built-in defaults.
type Loader struct {
	v      *viper.Viper
	locate BackendLocator
}

// BackendLocator looks up a backend by instance name when backend_url is
// neither a URL nor a remembered name, and returns its base URL.
type BackendLocator func(ctx context.Context, name string, d DiscoveryConfig) (string, error)

// SetLocator installs the lookup used for unknown backend names.
func (l *Loader) SetLocator(fn BackendLocator) {
	l.locate = fn
}

// NewLoader creates a loader primed with the defaults.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("backend_url", d.BackendURL)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)

	v.SetDefault("grafana.base_url", d.Grafana.BaseURL)
	v.SetDefault("grafana.from", d.Grafana.From)
	v.SetDefault("grafana.to", d.Grafana.To)
	v.SetDefault("grafana.refresh", d.Grafana.Refresh)
	v.SetDefault("grafana.timezone", d.Grafana.Timezone)

	v.SetDefault("discovery.timeout", d.Discovery.Timeout)
	v.SetDefault("discovery.service", d.Discovery.Service)
	v.SetDefault("discovery.domain", d.Discovery.Domain)

	v.SetDefault("simulator.listen", d.Simulator.Listen)
	v.SetDefault("simulator.advertise", d.Simulator.Advertise)
	v.SetDefault("simulator.name", d.Simulator.Name)
	v.SetDefault("simulator.arm_delay", d.Simulator.ArmDelay)
	v.SetDefault("simulator.pin", d.Simulator.PIN)
}

// BindFlags binds every known flag present in fs. Flags only override the
// other sources when set explicitly.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file and returns the merged configuration. With an
// empty path the default location is used and a missing file is not an
// error; an explicit path must exist.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
	))
	if err := l.v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Backends == nil {
		cfg.Backends = map[string]*Backend{}
	}
	cfg.BackendURL = cfg.ResolveBackend(cfg.BackendURL)
	if l.locate != nil && isBackendName(cfg.BackendURL) {
		found, err := l.locate(context.Background(), cfg.BackendURL, cfg.Discovery)
		if err != nil {
			return nil, fmt.Errorf("failed to locate backend %q: %w", cfg.BackendURL, err)
		}
		cfg.BackendURL = found
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isBackendName reports whether s looks like an instance name rather than
// a URL.
func isBackendName(s string) bool {
	return s != "" && !strings.Contains(s, "://")
}

// ConfigFileUsed returns the file Load read, empty if none.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
