// Command docnav resolves a documentation site's documents and sidebars into
// a navigable site graph and serves it to page renderers.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docnav/cmd/docnav/commands"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("docnav"),
		kong.Description("Documentation navigation resolver: documents and sidebars in, prev/next, breadcrumbs and permalinks out."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Get().String()},
	)
	if err := ctx.Run(&commands.Global{Out: os.Stdout}, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
