package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/docnav/internal/sidebar"
	"git.home.luguber.info/inful/docnav/internal/site"
)

// InspectCmd prints the resolved navigation.
type InspectCmd struct {
	Doc     string `help:"Show the navigation of one document instead of the trees"`
	Sidebar string `help:"Only print this sidebar"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	snap, err := site.NewBuilder(site.OptionsFromConfig(cfg)).Build(context.Background())
	if err != nil {
		return err
	}
	if i.Doc != "" {
		return printDocument(g.out(), snap, i.Doc)
	}
	if i.Sidebar != "" {
		tree, err := snap.Sidebars.Tree(i.Sidebar)
		if err != nil {
			return err
		}
		printTree(g.out(), tree)
		return nil
	}
	for tree := range snap.Sidebars.Trees() {
		printTree(g.out(), tree)
	}
	return nil
}

var (
	headerColor   = color.New(color.FgCyan, color.Bold)
	categoryColor = color.New(color.FgYellow)
	idColor       = color.New(color.Faint)
)

func printTree(w io.Writer, tree *sidebar.Tree) {
	_, _ = headerColor.Fprintf(w, "%s (%d documents)\n", tree.Name(), tree.Len())
	tree.Walk(func(n sidebar.Node, depth int) bool {
		indent := strings.Repeat("  ", depth+1)
		switch n := n.(type) {
		case *sidebar.Category:
			_, _ = categoryColor.Fprintf(w, "%s+ %s", indent, n.Label)
			if n.Permalink != "" {
				_, _ = fmt.Fprintf(w, "  %s", n.Permalink)
			}
			_, _ = fmt.Fprintln(w)
		case *sidebar.Link:
			_, _ = fmt.Fprintf(w, "%s- %s ", indent, n.Label)
			_, _ = idColor.Fprintf(w, "[%s]", n.DocumentID)
			_, _ = fmt.Fprintln(w)
		}
		return true
	})
}

func printDocument(w io.Writer, snap *site.Snapshot, id string) error {
	md, err := snap.Metadata(id)
	if err != nil {
		return err
	}
	_, _ = headerColor.Fprintf(w, "%s: %s\n", md.ID, md.Title)
	_, _ = fmt.Fprintf(w, "  permalink:  %s\n", md.Permalink)
	sb := md.Sidebar
	if sb == "" {
		sb = "(none)"
	}
	_, _ = fmt.Fprintf(w, "  sidebar:    %s\n", sb)
	_, _ = fmt.Fprintf(w, "  breadcrumb: %s\n", strings.Join(md.Breadcrumb, " > "))
	_, _ = fmt.Fprintf(w, "  previous:   %s\n", linkText(md.Previous))
	_, _ = fmt.Fprintf(w, "  next:       %s\n", linkText(md.Next))
	return nil
}

func linkText(l *site.PageLink) string {
	if l == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", l.Title, l.Permalink)
}
