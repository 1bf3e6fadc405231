package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/site"
)

// BuildCmd builds the snapshot once.
type BuildCmd struct {
	Out string `short:"o" help:"Write the version metadata as JSON to this file ('-' for stdout)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := buildOnce(ctx, cfg)
	if err != nil {
		return err
	}
	printSummary(g.out(), snap)
	if b.Out == "" {
		return nil
	}
	return writeVersion(g.out(), b.Out, snap)
}

// buildOnce runs a single manual rebuild, recording build events when an
// event log is configured.
func buildOnce(ctx context.Context, cfg *config.Config) (*site.Snapshot, error) {
	var opts []site.StoreOption
	if cfg.Events.Path != "" {
		es, err := eventstore.NewSQLiteStore(cfg.EventsPath())
		if err != nil {
			return nil, err
		}
		defer func() { _ = es.Close() }()
		opts = append(opts, site.WithEvents(es))
	}
	store := site.NewStore(site.NewBuilder(site.OptionsFromConfig(cfg)), opts...)
	return store.Rebuild(ctx, site.TriggerManual)
}

func printSummary(w io.Writer, snap *site.Snapshot) {
	ok := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)
	_, _ = ok.Fprintf(w, "Built %s\n", snap.BuildID)
	_, _ = fmt.Fprintf(w, "  documents:   %d (%d in sidebars)\n", snap.Registry.Len(), snap.Sidebars.Len())
	_, _ = fmt.Fprintf(w, "  sidebars:    %d\n", len(snap.Sidebars.Names()))
	for tree := range snap.Sidebars.Trees() {
		_, _ = dim.Fprintf(w, "    - %s (%d)\n", tree.Name(), tree.Len())
	}
	_, _ = fmt.Fprintf(w, "  fingerprint: %s\n", snap.Fingerprint)
}

func writeVersion(stdout io.Writer, path string, snap *site.Snapshot) error {
	data, err := json.MarshalIndent(snap.Version(), "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "encode version metadata").Build()
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write version metadata").
			WithContext("path", path).
			Build()
	}
	return nil
}
