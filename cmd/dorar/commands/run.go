package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dorar/internal/config"
	"github.com/jmylchreest/dorar/internal/crawler"
	"github.com/jmylchreest/dorar/internal/logger"
	"github.com/jmylchreest/dorar/internal/output"
	"github.com/jmylchreest/dorar/pkg/dorar"
	"github.com/jmylchreest/dorar/pkg/fetcher"
)

// run holds what every crawl command needs.
type run struct {
	cfg      *config.Config
	session  *fetcher.Session
	site     *crawler.Site
	extract  *dorar.Extractor
	dir      *output.Dir
	manifest *output.Manifest
}

func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("json_logs"),
	})
}

// startRun loads the configuration and opens the fetch session. The
// returned context is cancelled on SIGINT or SIGTERM.
func startRun(name, subdir, referer string) (*run, context.Context, context.CancelFunc, error) {
	initLogger()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, nil, err
	}

	siteCfg := crawler.DefaultSiteConfig()
	siteCfg.Base = cfg.BaseURL
	site, err := crawler.NewSite(siteCfg)
	if err != nil {
		return nil, nil, nil, err
	}

	fcfg := fetcher.DefaultConfig()
	fcfg.Timeout = cfg.Timeout
	if cfg.UserAgent != "" {
		fcfg.UserAgent = cfg.UserAgent
	}
	f, err := fetcher.New(fetcher.Mode(cfg.FetchMode), fcfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating fetcher: %w", err)
	}

	dir, err := output.NewDir(filepath.Join(cfg.OutputDir, subdir))
	if err != nil {
		_ = f.Close()
		return nil, nil, nil, err
	}
	dir.SkipExisting = cfg.SkipExisting

	r := &run{
		cfg:     cfg,
		session: fetcher.NewSession(f, cfg.Delay, site.Resolve(referer)),
		site:    site,
		extract: dorar.New(cfg.ExtractorOptions()...),
		dir:     dir,
		manifest: &output.Manifest{
			Command: name,
			Source:  site.Resolve(referer),
			Started: time.Now(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	logger.Debug("run starting", "command", name, "fetcher", f.Type(), "output", dir.Root())
	return r, ctx, cancel, nil
}

// close releases the fetch session. Commands defer it right after startRun.
func (r *run) close() {
	if err := r.session.Close(); err != nil {
		logger.Debug("closing fetch session", "error", err)
	}
}

// fetchIndex warms up the session on the site root, then fetches path.
func (r *run) fetchIndex(ctx context.Context, path string) (string, error) {
	r.session.Get(ctx, r.site.Base(), r.site.Base())
	raw := r.session.Get(ctx, r.site.Resolve(path), r.site.Base())
	if raw == "" {
		return "", fmt.Errorf("fetching %s failed", r.site.Resolve(path))
	}
	return raw, nil
}

// skip reports whether name exists and must be left alone, recording it.
func (r *run) skip(name, title string) bool {
	if !r.dir.SkipExisting || !r.dir.Exists(name) {
		return false
	}
	logInfo("  exists, skipping: %s", name)
	r.manifest.Add(output.FileRecord{Name: name, Title: title, Skipped: true})
	return true
}

// write stores one rendered file and records it.
func (r *run) write(name, content string, rec output.FileRecord) error {
	written, err := r.dir.Write(name, content)
	if errors.Is(err, output.ErrExists) {
		r.manifest.Add(written)
		return nil
	}
	if err != nil {
		return err
	}
	written.Title = rec.Title
	written.Source = rec.Source
	written.Entries = rec.Entries
	r.manifest.Add(written)
	logInfo("  saved %s (%d entries, %s)", name, rec.Entries, humanize.Bytes(uint64(written.Bytes)))
	return nil
}

// finish writes the manifest.
func (r *run) finish() error {
	stats := r.session.Stats()
	r.manifest.Finished = time.Now()
	r.manifest.Requests = stats.Requests
	r.manifest.Failures = stats.Failures
	r.manifest.Bytes = stats.Bytes

	format := output.Format(r.cfg.Manifest)
	path := r.dir.Path("manifest" + format.Extension())
	if err := r.manifest.Save(path, format); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	logInfo("done: %d files written, %s requests (%d failed), %s fetched in %s",
		r.manifest.Written(),
		humanize.Comma(int64(stats.Requests)),
		stats.Failures,
		humanize.Bytes(uint64(stats.Bytes)),
		r.manifest.Finished.Sub(r.manifest.Started).Round(time.Second))
	return nil
}

func limit[T any](items []T, n int) []T {
	if n > 0 && n < len(items) {
		return items[:n]
	}
	return items
}
