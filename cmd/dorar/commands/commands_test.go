package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jmylchreest/dorar/internal/crawler"
	"github.com/jmylchreest/dorar/pkg/block"
	"github.com/jmylchreest/dorar/pkg/dorar"
	"github.com/jmylchreest/dorar/pkg/fetcher"
)

func TestLimit(t *testing.T) {
	items := []int{1, 2, 3}
	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{1, 2, 3}},
		{2, []int{1, 2}},
		{5, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		if got := limit(items, tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("limit(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestRenderPage(t *testing.T) {
	page := &dorar.Page{
		Title: "سورة الفاتحة",
		Blocks: []block.Block{
			{Heading: "أ", Text: "نص [^1]", Footnotes: []block.Footnote{{Number: 1, Body: "ح1"}}},
			{Heading: "ب", Text: "نص [^1]", Footnotes: []block.Footnote{{Number: 1, Body: "ح2"}}},
		},
	}
	want := "# سورة الفاتحة\n\n## أ\n\nنص [^1]\n\n## ب\n\nنص [^2]\n\n[^1]: ح1\n[^2]: ح2\n"
	if got := renderPage(page); got != want {
		t.Errorf("renderPage() =\n%q\nwant\n%q", got, want)
	}

	single := &dorar.Page{Title: "t", Blocks: []block.Block{{Heading: "t", Text: "body"}}}
	if got := renderPage(single); got != "# t\n\nbody\n\n" {
		t.Errorf("single block rendered as %q", got)
	}
}

func TestConvertRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	page := `<html><body><nav>menu</nav><div class="modal">x</div><p>نص الصفحة</p></body></html>`
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	var buf bytes.Buffer
	if err := convertRegions(&buf, []string{path}, false); err != nil {
		t.Fatalf("convertRegions() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "نص الصفحة") {
		t.Errorf("expected body text, got %q", out)
	}
	for _, unwanted := range []string{"menu", "modal"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("expected %q removed, got %q", unwanted, out)
		}
	}
}

func TestConvertRegions_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := convertRegions(&buf, []string{filepath.Join(t.TempDir(), "missing.html")}, true); err == nil {
		t.Error("expected error for a missing file")
	}
}

type recordingCollector struct {
	seen   []string
	cancel context.CancelFunc
	errs   map[string]error
}

func (c *recordingCollector) Collect(_ context.Context, unit crawler.Link, _ *dorar.Collector) (int, error) {
	c.seen = append(c.seen, unit.Title)
	if c.cancel != nil {
		c.cancel()
	}
	return 0, c.errs[unit.Title]
}

func TestCollectUnits(t *testing.T) {
	units := []crawler.Link{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	t.Run("all units", func(t *testing.T) {
		uc := &recordingCollector{errs: map[string]error{"a": crawler.ErrUnavailable}}
		collectUnits(context.Background(), uc, units, dorar.NewCollector())
		if !reflect.DeepEqual(uc.seen, []string{"a", "b", "c"}) {
			t.Errorf("seen = %v", uc.seen)
		}
	})

	t.Run("stops on error", func(t *testing.T) {
		uc := &recordingCollector{errs: map[string]error{"b": errors.New("boom")}}
		collectUnits(context.Background(), uc, units, dorar.NewCollector())
		if !reflect.DeepEqual(uc.seen, []string{"a", "b"}) {
			t.Errorf("seen = %v", uc.seen)
		}
	})

	t.Run("stops once cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		uc := &recordingCollector{cancel: cancel}
		collectUnits(ctx, uc, units, dorar.NewCollector())
		if !reflect.DeepEqual(uc.seen, []string{"a"}) {
			t.Errorf("seen = %v, want only the unit in flight", uc.seen)
		}
	})
}

type closingFetcher struct {
	closed int
}

func (f *closingFetcher) Fetch(context.Context, string, fetcher.Options) (fetcher.Content, error) {
	return fetcher.Content{StatusCode: 503}, errors.New("unavailable")
}

func (f *closingFetcher) Close() error {
	f.closed++
	return nil
}

func (f *closingFetcher) Type() string { return "closing" }

func TestRun_CloseAfterFailedIndex(t *testing.T) {
	site, err := crawler.NewSite(crawler.DefaultSiteConfig())
	if err != nil {
		t.Fatalf("NewSite() error = %v", err)
	}
	f := &closingFetcher{}
	r := &run{session: fetcher.NewSession(f, 0, ""), site: site}

	err = func() error {
		defer r.close()
		_, err := r.fetchIndex(context.Background(), "/tafseer")
		return err
	}()
	if err == nil {
		t.Fatal("expected fetchIndex to fail")
	}
	if f.closed != 1 {
		t.Errorf("fetcher closed %d times, want 1", f.closed)
	}
}
