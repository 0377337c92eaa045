package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dorar/internal/crawler"
	"github.com/jmylchreest/dorar/internal/output"
)

var arabiaCmd = &cobra.Command{
	Use:   "arabia",
	Short: "Write one Markdown file per branch of the Arabic language encyclopedia",
	Long: `Walk the grammar tree depth first from its root page. Pages listing
children become headings; the others are extracted with footnotes numbered
across the whole branch.`,
	RunE: runArabia,
}

func init() {
	rootCmd.AddCommand(arabiaCmd)

	flags := arabiaCmd.Flags()
	flags.String("root", "/arabia/5197", "path of the tree root page")
	flags.Int("separator-level", 3, "write a rule after nodes at this level or deeper (0=never)")

	_ = viper.BindPFlag("tree_root", flags.Lookup("root"))
	_ = viper.BindPFlag("separator_level", flags.Lookup("separator-level"))
}

func runArabia(_ *cobra.Command, _ []string) error {
	r, ctx, cancel, err := startRun("arabia", "dorar_arabia", "/arabia")
	if err != nil {
		logError("%v", err)
		return err
	}
	defer cancel()
	defer r.close()

	root := r.site.Resolve(r.cfg.TreeRoot)
	raw, err := r.fetchIndex(ctx, r.cfg.TreeRoot)
	if err != nil {
		logError("%v", err)
		return err
	}
	branches := limit(r.site.Branches(raw), r.cfg.Limit)
	logInfo("%d branches", len(branches))

	opts := output.DefaultBranchOptions()
	opts.SeparatorLevel = r.cfg.SeparatorLevel
	tree := crawler.NewTree(r.session, r.site, r.extract, crawler.NewVisited(root))

	names := output.NewNameSet()
	for _, b := range branches {
		if ctx.Err() != nil {
			break
		}
		name := names.Unique(output.BranchFile(b.Title))
		if r.skip(name, b.Title) {
			continue
		}

		logInfo("branch: %s (%d top links)", b.Title, len(b.Links))
		tree.ResetFootnotes()
		var nodes []crawler.Node
		for _, l := range b.Links {
			sub, err := tree.Walk(ctx, l.URL, l.Title, 2, root)
			nodes = append(nodes, sub...)
			if err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		rec := output.FileRecord{Title: b.Title, Source: root, Entries: len(nodes)}
		if err := r.write(name, output.RenderBranch(b.Title, nodes, opts), rec); err != nil {
			logError("%v", err)
			return err
		}
	}
	return r.finish()
}
