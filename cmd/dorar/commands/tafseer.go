package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/dorar/internal/crawler"
	"github.com/jmylchreest/dorar/internal/output"
)

var tafseerCmd = &cobra.Command{
	Use:   "tafseer",
	Short: "Write one Markdown file per surah",
	Long: `Walk every surah of the commentary encyclopedia: the surah page, then
its pages in order through the "next" links. Each surah becomes one file
with footnotes numbered from 1.`,
	RunE: runTafseer,
}

func init() {
	rootCmd.AddCommand(tafseerCmd)
}

func runTafseer(_ *cobra.Command, _ []string) error {
	r, ctx, cancel, err := startRun("tafseer", "dorar_tafseer", "/tafseer")
	if err != nil {
		logError("%v", err)
		return err
	}
	defer cancel()
	defer r.close()

	raw, err := r.fetchIndex(ctx, "/tafseer")
	if err != nil {
		logError("%v", err)
		return err
	}
	units := limit(r.site.Units(raw), r.cfg.Limit)
	logInfo("%d surahs", len(units))

	tf := crawler.NewTafseer(r.session, r.site, r.extract, r.site.Resolve("/tafseer"))
	tf.MaxPages = r.cfg.MaxPages

	for _, u := range units {
		if ctx.Err() != nil {
			break
		}
		name := output.SurahFile(u.Num(0), u.Title)
		if r.skip(name, u.Title) {
			continue
		}

		logInfo("[%d] %s", u.Num(0), u.Title)
		s, err := tf.Surah(ctx, u)
		if errors.Is(err, crawler.ErrUnavailable) {
			logError("%s: %v", u.Title, err)
			continue
		}
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			// Cancelled mid-chain: leave the file unwritten so the next run
			// fetches the whole surah again.
			logError("%s: %v", u.Title, err)
			break
		}
		rec := output.FileRecord{Title: u.Title, Source: u.URL, Entries: len(s.Sections)}
		if err := r.write(name, output.RenderSurah(s), rec); err != nil {
			logError("%v", err)
			return err
		}
	}
	return r.finish()
}
