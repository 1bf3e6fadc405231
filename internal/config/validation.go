package config

import (
	"net/url"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// validate checks a normalized, defaulted configuration.
func validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateSite,
		validateDocs,
		validateServer,
		validateRuntime,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(field, problem string) *ferrors.ErrorBuilder {
	return ferrors.ConfigError(problem).WithContext("field", field)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != CurrentVersion {
		return invalid("version", "unsupported configuration version").
			WithContext("value", cfg.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	return nil
}

func validateSite(cfg *Config) error {
	if cfg.Site.EditURL != "" {
		u, err := url.Parse(cfg.Site.EditURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid("site.edit_url", "edit URL must be absolute").
				WithContext("value", cfg.Site.EditURL).
				Build()
		}
	}
	if strings.ContainsAny(cfg.Site.BasePath+cfg.Site.RoutePrefix, "?#") {
		return invalid("site", "base_path and route_prefix must be plain paths").Build()
	}
	return nil
}

func validateDocs(cfg *Config) error {
	d := cfg.Docs
	for _, ext := range d.Extensions {
		if ext == "." || strings.ContainsAny(ext, "/\\") {
			return invalid("docs.extensions", "invalid extension").WithContext("value", ext).Build()
		}
	}
	if d.TOCMinLevel < 1 || d.TOCMaxLevel > 6 || d.TOCMinLevel > d.TOCMaxLevel {
		return invalid("docs.toc_min_level", "table of contents levels must satisfy 1 <= min <= max <= 6").
			WithContext("min", d.TOCMinLevel).
			WithContext("max", d.TOCMaxLevel).
			Build()
	}
	return nil
}

func validateServer(cfg *Config) error {
	s := cfg.Server
	if s.CacheSize < 0 {
		return invalid("server.cache_size", "cache size must not be negative").Build()
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return invalid("server", "timeouts must not be negative").Build()
	}
	return nil
}

func validateRuntime(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return invalid("watch.debounce", "debounce must not be negative").Build()
	}
	if iv := cfg.Schedule.RebuildInterval.Std(); iv != 0 && iv < time.Second {
		return invalid("schedule.rebuild_interval", "rebuild interval must be at least 1s").
			WithContext("value", iv.String()).
			Build()
	}
	if cfg.Notify.NATSURL != "" && strings.TrimSpace(cfg.Notify.Subject) == "" {
		return invalid("notify.subject", "subject is required when nats_url is set").Build()
	}
	return nil
}
