package config

import (
	"slices"
	"time"
)

// Default values.
const (
	DefaultRoutePrefix = "docs"
	DefaultDocsDir     = "docs"
	DefaultSidebars    = "sidebars.yaml"
	DefaultAddr        = ":8080"
	DefaultMCPEndpoint = "/mcp"
	DefaultCacheSize   = 512
	DefaultDebounce    = 300 * time.Millisecond
	DefaultSubject     = "docnav.snapshot.swapped"
)

// DefaultExtensions are the document extensions discovered by default.
var DefaultExtensions = []string{".md", ".mdx"}

// defaultApplier applies defaults for one configuration section.
type defaultApplier interface {
	applyDefaults(cfg *Config)
	domain() string
}

type siteDefaults struct{}

func (siteDefaults) domain() string { return "site" }
func (siteDefaults) applyDefaults(cfg *Config) {
	if cfg.Site.BasePath == "" {
		cfg.Site.BasePath = "/"
	}
	if cfg.Site.RoutePrefix == "" {
		cfg.Site.RoutePrefix = DefaultRoutePrefix
	}
}

type docsDefaults struct{}

func (docsDefaults) domain() string { return "docs" }
func (docsDefaults) applyDefaults(cfg *Config) {
	if cfg.Docs.Dir == "" {
		cfg.Docs.Dir = DefaultDocsDir
	}
	if cfg.Docs.Sidebars == "" {
		cfg.Docs.Sidebars = DefaultSidebars
	}
	cfg.Docs.Extensions = slices.DeleteFunc(cfg.Docs.Extensions, func(s string) bool { return s == "" })
	if len(cfg.Docs.Extensions) == 0 {
		cfg.Docs.Extensions = slices.Clone(DefaultExtensions)
	}
	if cfg.Docs.TOCMinLevel == 0 {
		cfg.Docs.TOCMinLevel = 2
	}
	if cfg.Docs.TOCMaxLevel == 0 {
		cfg.Docs.TOCMaxLevel = 3
	}
}

type serverDefaults struct{}

func (serverDefaults) domain() string { return "server" }
func (serverDefaults) applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.MCPEndpoint == "" {
		cfg.Server.MCPEndpoint = DefaultMCPEndpoint
	}
	if cfg.Server.CacheSize == 0 {
		cfg.Server.CacheSize = DefaultCacheSize
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
}

type runtimeDefaults struct{}

func (runtimeDefaults) domain() string { return "runtime" }
func (runtimeDefaults) applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = Duration(DefaultDebounce)
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultSubject
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}

var appliers = []defaultApplier{siteDefaults{}, docsDefaults{}, serverDefaults{}, runtimeDefaults{}}

func applyDefaults(cfg *Config) {
	for _, a := range appliers {
		a.applyDefaults(cfg)
	}
}
