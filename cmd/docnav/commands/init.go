package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docnav/internal/config"
)

// InitCmd writes an example configuration.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Wrote %s\nEdit docs.dir and site.base_path, then run 'docnav build'.\n", root.Config)
	return nil
}
