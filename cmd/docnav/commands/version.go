package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/docnav/internal/version"
)

// VersionCmd prints build information.
type VersionCmd struct {
	JSON bool `help:"Print as JSON"`
}

func (v *VersionCmd) Run(g *Global, _ *CLI) error {
	info := version.Get()
	if v.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	_, _ = fmt.Fprintln(g.out(), info.String())
	return nil
}
