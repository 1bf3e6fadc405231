package config

import (
	"strings"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// normalize canonicalizes enums and path shapes before defaults apply.
func normalize(cfg *Config) error {
	cfg.Version = strings.TrimSpace(cfg.Version)

	if raw := string(cfg.Logging.Level); raw != "" {
		lvl := NormalizeLogLevel(raw)
		if lvl == "" {
			return invalidEnum("logging.level", raw, logLevelNormalizer.ValidKeys())
		}
		cfg.Logging.Level = lvl
	}
	if raw := string(cfg.Logging.Format); raw != "" {
		f := NormalizeLogFormat(raw)
		if f == "" {
			return invalidEnum("logging.format", raw, logFormatNormalizer.ValidKeys())
		}
		cfg.Logging.Format = f
	}

	if bp := strings.TrimSpace(cfg.Site.BasePath); bp != "" {
		cfg.Site.BasePath = "/" + strings.Trim(bp, "/") + "/"
		if cfg.Site.BasePath == "//" {
			cfg.Site.BasePath = "/"
		}
	}
	cfg.Site.RoutePrefix = strings.Trim(strings.TrimSpace(cfg.Site.RoutePrefix), "/")

	for i, ext := range cfg.Docs.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Docs.Extensions[i] = ext
	}

	if ep := strings.TrimSpace(cfg.Server.MCPEndpoint); ep != "" && !strings.HasPrefix(ep, "/") {
		cfg.Server.MCPEndpoint = "/" + ep
	}
	return nil
}

func invalidEnum(field, value string, valid []string) error {
	return ferrors.ConfigError("unsupported value").
		WithContext("field", field).
		WithContext("value", value).
		WithContext("valid", strings.Join(valid, ",")).
		Build()
}
