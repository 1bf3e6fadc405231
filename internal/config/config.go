// Package config loads the docnav configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// CurrentVersion is the configuration format version.
const CurrentVersion = "1"

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "docnav.yaml"

// ErrConfigNotFound indicates the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config is the docnav configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Site     SiteConfig     `yaml:"site"`
	Docs     DocsConfig     `yaml:"docs"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Events   EventsConfig   `yaml:"events"`
	Notify   NotifyConfig   `yaml:"notify"`
	Logging  LoggingConfig  `yaml:"logging"`

	// baseDir resolves relative paths; the directory of the config file.
	baseDir string
}

// SiteConfig controls permalinks and edit links.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BasePath    string `yaml:"base_path"`    // e.g. /parallel-programming-essentials/
	RoutePrefix string `yaml:"route_prefix"` // docs route below base_path
	EditURL     string `yaml:"edit_url"`     // base URL of the docs directory in the forge
}

// DocsConfig controls discovery.
type DocsConfig struct {
	Dir           string   `yaml:"dir"`
	Sidebars      string   `yaml:"sidebars"` // sidebar specification file
	Extensions    []string `yaml:"extensions"`
	IncludeDrafts bool     `yaml:"include_drafts"`
	LastUpdated   bool     `yaml:"last_updated"` // read author/time from git history
	TOCMinLevel   int      `yaml:"toc_min_level"`
	TOCMaxLevel   int      `yaml:"toc_max_level"`
}

// ServerConfig controls the HTTP query API.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	MCPEndpoint     string   `yaml:"mcp_endpoint"` // empty disables the MCP server
	CacheSize       int      `yaml:"cache_size"`   // response cache entries; 0 disables
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// WatchConfig controls live rebuilds on file changes.
type WatchConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Debounce Duration `yaml:"debounce"`
}

// ScheduleConfig controls periodic rebuilds.
type ScheduleConfig struct {
	RebuildInterval Duration `yaml:"rebuild_interval"` // 0 disables
}

// EventsConfig controls the build event log.
type EventsConfig struct {
	Path string `yaml:"path"` // sqlite file or :memory:; empty disables
}

// NotifyConfig controls snapshot change notifications.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"` // empty disables
	Subject string `yaml:"subject"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

// UnmarshalYAML parses "300ms", "1m30s" and so on.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "" || node.Value == "0" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

// Std returns the standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads, expands, normalizes, defaults and validates a configuration
// file. ${VAR} references are expanded after .env files are loaded.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("file", path).
				WithCause(ErrConfigNotFound).
				Build()
		}
		return nil, ferrors.FileSystemError("failed to read configuration file").
			WithContext("file", path).
			WithCause(err).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return nil, ce.WithContext("file", path)
		}
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, ferrors.FileSystemError("cannot resolve configuration directory").WithCause(err).Build()
	}
	cfg.baseDir = abs
	return cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file yields Default
// unless required is set.
func LoadOrDefault(path string, required bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !required && errors.Is(err, ErrConfigNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes configuration YAML without environment expansion.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.ConfigError("invalid configuration YAML").
			WithContext("detail", err.Error()).
			Build()
	}
	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := finish(cfg); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

func finish(cfg *Config) error {
	if err := normalize(cfg); err != nil {
		return err
	}
	applyDefaults(cfg)
	return validate(cfg)
}

// ResolvePath resolves p against the configuration file's directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// DocsDir returns the resolved docs directory.
func (c *Config) DocsDir() string { return c.ResolvePath(c.Docs.Dir) }

// SidebarsFile returns the resolved sidebar specification file.
func (c *Config) SidebarsFile() string { return c.ResolvePath(c.Docs.Sidebars) }

// EventsPath returns the resolved event store path, empty when disabled.
func (c *Config) EventsPath() string { return c.ResolvePath(c.Events.Path) }
