package config

import (
	"embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/matheuskafuri/blogreader/internal/query"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	BackendAPI   = "api"
	BackendFile  = "file"
	BackendLocal = "local"

	defaultDebounce  = 300 * time.Millisecond
	defaultRetention = 90 * 24 * time.Hour
)

type Feed struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"` // "api", "file" or "local"
	URL     string `yaml:"url,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

type SearchConfig struct {
	Debounce string `yaml:"debounce"`
	Sort     string `yaml:"sort"`
}

type Config struct {
	Store           StoreConfig  `yaml:"store"`
	Search          SearchConfig `yaml:"search"`
	RefreshInterval string       `yaml:"refresh_interval"`
	Retention       string       `yaml:"retention"`
	LogLevel        string       `yaml:"log_level,omitempty"`
	Feeds           []Feed       `yaml:"feeds"`
}

// DebounceDuration returns the search debounce delay. Zero means every
// keystroke is applied immediately.
func (c *Config) DebounceDuration() time.Duration {
	if c.Search.Debounce == "" {
		return defaultDebounce
	}
	if c.Search.Debounce == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.Search.Debounce)
	if err != nil || d < 0 {
		return defaultDebounce
	}
	return d
}

// SortOrder returns the initial sort order, newest first unless configured.
func (c *Config) SortOrder() query.SortOrder {
	o, err := query.ParseSortOrder(c.Search.Sort)
	if err != nil {
		return query.Newest
	}
	return o
}

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	d, err := ParseDays(c.Retention)
	if err != nil || d <= 0 {
		return defaultRetention
	}
	return d
}

// ParseDays parses a duration that may also use a "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

// Level maps log_level to a slog level, info by default.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) FeedNames() []string {
	var names []string
	for _, f := range c.EnabledFeeds() {
		names = append(names, f.Name)
	}
	return names
}

// StorePath resolves store.path for the file and local backends.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	switch c.Store.Backend {
	case BackendFile:
		return DataPath()
	default:
		return CachePath("local.db")
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "blogreader", "config.yaml")
}

func CachePath(name string) string {
	return filepath.Join(xdg.CacheHome, "blogreader", name)
}

func DataPath() string {
	return filepath.Join(xdg.DataHome, "blogreader", "db.json")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "blogreader", "blogreader.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run. Failing to do so
			// is not fatal, the embedded defaults still apply.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg, defaults)
	mergeDefaultFeeds(&cfg, defaults)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg, defaults *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = defaults.Store.Backend
	}
	if cfg.Store.Backend == BackendAPI && cfg.Store.URL == "" {
		cfg.Store.URL = defaults.Store.URL
	}
	if cfg.Search.Debounce == "" {
		cfg.Search.Debounce = defaults.Search.Debounce
	}
	if cfg.Search.Sort == "" {
		cfg.Search.Sort = defaults.Search.Sort
	}
	if cfg.RefreshInterval == "" {
		cfg.RefreshInterval = defaults.RefreshInterval
	}
	if cfg.Retention == "" {
		cfg.Retention = defaults.Retention
	}
}

// mergeDefaultFeeds keeps user feeds, refreshes the URL of feeds that share a
// name with a default, and appends defaults the user has never seen.
func mergeDefaultFeeds(cfg, defaults *Config) {
	byName := make(map[string]int, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		byName[f.Name] = i
	}
	for _, d := range defaults.Feeds {
		if i, ok := byName[d.Name]; ok {
			cfg.Feeds[i].URL = d.URL
			continue
		}
		cfg.Feeds = append(cfg.Feeds, d)
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendAPI:
		if err := validateURL("store", cfg.Store.URL); err != nil {
			return err
		}
	case BackendFile, BackendLocal:
	default:
		return fmt.Errorf("store: unknown backend %q (valid: api, file, local)", cfg.Store.Backend)
	}

	if cfg.Search.Sort != "" {
		if _, err := query.ParseSortOrder(cfg.Search.Sort); err != nil {
			return fmt.Errorf("search: %w", err)
		}
	}
	if d := strings.TrimSpace(cfg.Search.Debounce); d != "" && d != "0" {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("search: invalid debounce %q: %w", d, err)
		}
	}

	if r := strings.TrimSpace(cfg.Retention); r != "" {
		d, err := ParseDays(r)
		if err != nil {
			return fmt.Errorf("retention: invalid value %q: %w", r, err)
		}
		if d <= 0 {
			return fmt.Errorf("retention: must be positive, got %q", r)
		}
	}

	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if err := validateURL(fmt.Sprintf("feed %q", f.Name), f.URL); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(what, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s: url is required", what)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", what, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", what, u.Scheme)
	}
	return nil
}
