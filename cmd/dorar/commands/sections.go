package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dorar/internal/crawler"
	"github.com/jmylchreest/dorar/internal/output"
	"github.com/jmylchreest/dorar/pkg/dorar"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Group the commentary by recurring section heading",
	Long: `Walk every surah and file each article under the canonical form of its
heading. Headings that differ only by diacritics, letter variants or
close spelling share one file. An index lists the sections, largest first.`,
	RunE: runSections,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)

	flags := sectionsCmd.Flags()
	flags.Float64("threshold", 0.82, "similarity ratio at or above which two headings merge")
	flags.Float64("near-miss", 0.05, "log headings scoring this close below the threshold")
	flags.String("rules", "", "YAML file of extra canonical heading rules")
	flags.Bool("footnotes-per-entry", false, "write footnotes after each entry instead of at the end")

	_ = viper.BindPFlag("threshold", flags.Lookup("threshold"))
	_ = viper.BindPFlag("near_miss", flags.Lookup("near-miss"))
	_ = viper.BindPFlag("rules_file", flags.Lookup("rules"))
	_ = viper.BindPFlag("footnotes_per_entry", flags.Lookup("footnotes-per-entry"))
}

func runSections(_ *cobra.Command, _ []string) error {
	r, ctx, cancel, err := startRun("sections", "tafseer_sections", "/tafseer")
	if err != nil {
		logError("%v", err)
		return err
	}
	defer cancel()
	defer r.close()
	// Section files are rebuilt from the whole corpus on every run.
	r.dir.SkipExisting = false

	opts, err := r.cfg.HeadingOptions()
	if err != nil {
		logError("%v", err)
		return err
	}
	collector := dorar.NewCollector(opts...)

	raw, err := r.fetchIndex(ctx, "/tafseer")
	if err != nil {
		logError("%v", err)
		return err
	}
	units := limit(r.site.Units(raw), r.cfg.Limit)
	logInfo("%d surahs", len(units))

	tf := crawler.NewTafseer(r.session, r.site, r.extract, r.site.Resolve("/tafseer"))
	tf.MaxPages = r.cfg.MaxPages

	collectUnits(ctx, tf, units, collector)

	sections := collector.Sections()
	index := make([]output.IndexEntry, 0, len(sections))
	names := output.NewNameSet(output.IndexFile)
	for _, sec := range sections {
		name := names.Unique(output.SectionFile(sec.Key))
		content := output.RenderSection(sec, output.SectionOptions{FootnotesPerEntry: r.cfg.FootnotesPerEntry})
		if err := r.write(name, content, output.FileRecord{Title: sec.Heading, Entries: len(sec.Entries)}); err != nil {
			logError("%v", err)
			return err
		}
		index = append(index, output.IndexEntry{Heading: sec.Heading, File: name, Entries: len(sec.Entries)})
	}

	if err := r.write(output.IndexFile, output.RenderIndex(index), output.FileRecord{Title: output.IndexTitle, Entries: len(index)}); err != nil {
		logError("%v", err)
		return err
	}
	r.manifest.Clusters = collector.Clusterer().Mapping()
	return r.finish()
}

// unitCollector files the blocks of one unit with a collector.
type unitCollector interface {
	Collect(ctx context.Context, unit crawler.Link, c *dorar.Collector) (int, error)
}

// collectUnits feeds units to collector in order. An unavailable unit is
// skipped; any other error or a cancelled context ends the loop.
func collectUnits(ctx context.Context, uc unitCollector, units []crawler.Link, collector *dorar.Collector) {
	for _, u := range units {
		if ctx.Err() != nil {
			logInfo("interrupted, keeping %d sections collected so far", collector.Len())
			return
		}
		logInfo("[%d] %s", u.Num(0), u.Title)
		n, err := uc.Collect(ctx, u, collector)
		if errors.Is(err, crawler.ErrUnavailable) {
			logError("%s: %v", u.Title, err)
			continue
		}
		if err != nil {
			logError("%s: %v", u.Title, err)
			return
		}
		logInfo("  %d blocks, %d sections so far", n, collector.Len())
	}
}
