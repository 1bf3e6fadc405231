// Package commands implements the docnav subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/docnav/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI is the root command.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"docnav.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable debug logging"`
	LogFormat string           `name:"log-format" help:"Log format (text|json); overrides logging.format"`
	NoColor   bool             `name:"no-color" help:"Disable coloured output"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build       BuildCmd   `cmd:"" help:"Build the navigation snapshot once and report it"`
	Serve       ServeCmd   `cmd:"" help:"Serve the navigation API, rebuilding on change"`
	Inspect     InspectCmd `cmd:"" help:"Print sidebar trees or a document's navigation"`
	Init        InitCmd    `cmd:"" help:"Write an example configuration file"`
	VersionInfo VersionCmd `cmd:"" name:"version" help:"Print build information"`
}

// AfterApply runs after flag parsing and sets up logging and colour once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	configureLogging(os.Stderr, level, config.NormalizeLogFormat(c.LogFormat))
	color.NoColor = c.NoColor || !isTerminal(os.Stdout)
	return nil
}

// loadConfig loads the configuration file. The default path may be absent,
// in which case defaults apply; an explicitly named file must exist.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.Config, !isDefaultConfigPath(c.Config))
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	configureLogging(os.Stderr, level, format)
	return cfg, nil
}

func isDefaultConfigPath(p string) bool {
	abs, err := os.Getwd()
	if err != nil {
		return p == config.DefaultPath
	}
	return p == config.DefaultPath || p == abs+string(os.PathSeparator)+config.DefaultPath
}

func configureLogging(w io.Writer, level slog.Level, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
