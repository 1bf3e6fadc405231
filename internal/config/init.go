package config

import (
	"bytes"
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// ErrConfigExists indicates Init would overwrite an existing file.
var ErrConfigExists = errors.New("configuration file already exists")

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := Default()
	cfg.Site.Title = "Parallel Programming Essentials"
	cfg.Site.BasePath = "/parallel-programming-essentials/"
	cfg.Site.EditURL = "https://github.com/your-org/your-site/edit/main/docs/"
	cfg.Docs.LastUpdated = true
	cfg.Watch.Enabled = true
	cfg.Schedule.RebuildInterval = Duration(15 * time.Minute)
	cfg.Events.Path = "docnav-events.db"
	cfg.Notify.NATSURL = "${NATS_URL}"
	return cfg
}

// Init writes an example configuration file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.AlreadyExistsError("configuration file already exists (use --force to overwrite)").
			WithContext("file", path).
			WithCause(ErrConfigExists).
			Build()
	}

	var buf bytes.Buffer
	buf.WriteString("# docnav configuration. ${VAR} references are expanded from the\n")
	buf.WriteString("# environment and from .env/.env.local next to this file.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Example()); err != nil {
		return ferrors.InternalError("failed to encode example configuration").WithCause(err).Build()
	}
	if err := enc.Close(); err != nil {
		return ferrors.InternalError("failed to encode example configuration").WithCause(err).Build()
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return ferrors.FileSystemError("failed to write configuration file").
			WithContext("file", path).
			WithCause(err).
			Build()
	}
	return nil
}
