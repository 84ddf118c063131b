package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const appName = "orders-tui"

// Defaults applied to every portal profile after parsing.
const (
	DefaultPollInterval      = 30 * time.Second
	DefaultFetchTimeout      = 10 * time.Second
	DefaultCacheTTL          = 15 * time.Second
	DefaultReconnectDelay    = time.Second
	DefaultMaxReconnectDelay = 30 * time.Second
	DefaultPingInterval      = 25 * time.Second
)

// ErrNoPortals is returned when a config file defines no portal profiles.
var ErrNoPortals = errors.New("config has no portals defined")

// Config is the top-level configuration.
type Config struct {
	Portals map[string]PortalConfig `toml:"portals" yaml:"portals" validate:"dive"`
	Log     LogConfig               `toml:"log" yaml:"log"`
}

// PortalConfig holds connection details for one orders portal.
type PortalConfig struct {
	BaseURL            string `toml:"base_url" yaml:"base_url" validate:"required,http_url"`
	WebSocketURL       string `toml:"websocket_url" yaml:"websocket_url" validate:"omitempty,url"`
	APIKey             string `toml:"api_key" yaml:"api_key"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	// DisablePush skips the push channel and relies on polling alone.
	DisablePush bool   `toml:"disable_push" yaml:"disable_push"`
	InitialTab  string `toml:"initial_tab" yaml:"initial_tab" validate:"omitempty,oneof=urgent pending confirmed cancelled"`

	PollInterval      time.Duration `toml:"poll_interval" yaml:"poll_interval" validate:"gte=0"`
	FetchTimeout      time.Duration `toml:"fetch_timeout" yaml:"fetch_timeout" validate:"gte=0"`
	CacheTTL          time.Duration `toml:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	ReconnectDelay    time.Duration `toml:"reconnect_delay" yaml:"reconnect_delay" validate:"gte=0"`
	MaxReconnectDelay time.Duration `toml:"max_reconnect_delay" yaml:"max_reconnect_delay" validate:"gte=0"`
	PingInterval      time.Duration `toml:"ping_interval" yaml:"ping_interval" validate:"gte=0"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Path  string `toml:"path" yaml:"path"`
	Level string `toml:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `toml:"json" yaml:"json"`
}

// DefaultPath returns the default config file path using XDG conventions.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appName, "config.toml")
}

// DefaultLogPath returns the log file used when none is configured.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".cache")
	}
	return filepath.Join(dir, appName, appName+".log")
}

// LoadFrom reads, parses and validates the config file at path. Files
// ending in .yaml or .yml are parsed as YAML, everything else as TOML.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if len(cfg.Portals) == 0 {
		return nil, ErrNoPortals
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for name, p := range c.Portals {
		p.APIKey = os.ExpandEnv(p.APIKey)
		p.BaseURL = strings.TrimRight(p.BaseURL, "/")
		if p.WebSocketURL == "" && !p.DisablePush {
			p.WebSocketURL = deriveWebSocketURL(p.BaseURL)
		}
		if p.InitialTab == "" {
			p.InitialTab = "urgent"
		}
		setDefault(&p.PollInterval, DefaultPollInterval)
		setDefault(&p.FetchTimeout, DefaultFetchTimeout)
		setDefault(&p.CacheTTL, DefaultCacheTTL)
		setDefault(&p.ReconnectDelay, DefaultReconnectDelay)
		setDefault(&p.MaxReconnectDelay, DefaultMaxReconnectDelay)
		setDefault(&p.PingInterval, DefaultPingInterval)
		c.Portals[name] = p
	}
	if c.Log.Path == "" {
		c.Log.Path = DefaultLogPath()
	}
	c.Log.Path = expandPath(c.Log.Path)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func setDefault(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// deriveWebSocketURL maps http(s)://host/base to ws(s)://host/base/ws.
// Unparseable URLs are returned empty and left to validation.
func deriveWebSocketURL(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

// Validate checks field constraints on every portal profile.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	for name, p := range c.Portals {
		if p.MaxReconnectDelay < p.ReconnectDelay {
			return fmt.Errorf("portal %q: max_reconnect_delay must not be below reconnect_delay", name)
		}
	}
	return nil
}

// expandPath expands ~ to $HOME and then expands all environment variables.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = "$HOME" + path[1:]
	}
	return os.ExpandEnv(path)
}

// PortalNames returns the sorted list of portal profile names.
func (c *Config) PortalNames() []string {
	names := make([]string, 0, len(c.Portals))
	for name := range c.Portals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Portal resolves a profile by name. An empty name selects the only
// profile when exactly one is configured.
func (c *Config) Portal(name string) (string, PortalConfig, error) {
	if name == "" {
		names := c.PortalNames()
		if len(names) != 1 {
			return "", PortalConfig{}, fmt.Errorf("multiple portals configured, use --portal (available: %s)", strings.Join(names, ", "))
		}
		name = names[0]
	}
	p, ok := c.Portals[name]
	if !ok {
		return "", PortalConfig{}, fmt.Errorf("portal %q not found in config", name)
	}
	return name, p, nil
}
