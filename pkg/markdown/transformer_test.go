package markdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/dorar/pkg/block"
)

func region(t *testing.T, body string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc.Find("body")
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		start     int
		want      string
		footnotes []block.Footnote
		next      int
	}{
		{
			name:      "paragraphs survive a forced break",
			html:      `<p>A</p><br><p>B<span class="tip">note text</span></p>`,
			start:     1,
			want:      "A\n\nB [^1]",
			footnotes: []block.Footnote{{Number: 1, Body: "note text"}},
			next:      2,
		},
		{
			name:  "blank line runs collapse",
			html:  "<div>A\n\n\n\n\nB</div>",
			start: 1,
			want:  "A\n\nB",
			next:  1,
		},
		{
			name:  "navigation anchors dropped",
			html:  `<p>text <a href="/tafseer/2/3">التالي</a></p><p><a href="/x">الصفحة السابقة</a></p>`,
			start: 1,
			want:  "text",
			next:  1,
		},
		{
			name:  "other anchors kept",
			html:  `<p>see <a href="/x">البقرة</a></p>`,
			start: 1,
			want:  "see البقرة",
			next:  1,
		},
		{
			name:  "annotations wrapped",
			html:  `<p><span class="aaya">قل هو الله أحد</span> و <span class="hadith">إنما الأعمال بالنيات</span></p>`,
			start: 1,
			want:  "﴿قل هو الله أحد﴾ و «إنما الأعمال بالنيات»",
			next:  1,
		},
		{
			name:  "surah name padded",
			html:  `<p>سورة<span class="sora">البقرة</span>مدنية</p>`,
			start: 1,
			want:  "سورة البقرة مدنية",
			next:  1,
		},
		{
			name:      "annotation inside footnote",
			html:      `<p>x<span class="tip">see <span class="aaya">v</span></span></p>`,
			start:     1,
			want:      "x [^1]",
			footnotes: []block.Footnote{{Number: 1, Body: "see ﴿v﴾"}},
			next:      2,
		},
		{
			name:  "headings offset",
			html:  `<h2>Title</h2><p>body</p><h5>Deep</h5>`,
			start: 1,
			want:  "#### Title\n\nbody\n\n###### Deep",
			next:  1,
		},
		{
			name:  "sub-heading span promoted",
			html:  `<p>a <span class="title-2">sub</span> b</p>`,
			start: 1,
			want:  "a\n\n#### sub\n\nb",
			next:  1,
		},
		{
			name:  "loose text outside paragraphs dropped",
			html:  `<div>loose</div><p>kept</p>`,
			start: 1,
			want:  "kept",
			next:  1,
		},
		{
			name:      "paragraph inside a footnote marker does not switch modes",
			html:      `<div>النص الأصلي<span class="tip"><p>حاشية</p></span> تكملة</div>`,
			start:     1,
			want:      "النص الأصلي [^1] تكملة",
			footnotes: []block.Footnote{{Number: 1, Body: "حاشية"}},
			next:      2,
		},
		{
			name:  "no paragraphs joins the region",
			html:  `<div>one<br>two</div><div>three</div>`,
			start: 1,
			want:  "one two three",
			next:  1,
		},
		{
			name:  "numbering continues from start and skips empty markers",
			html:  `<p>a<sup class="fn">first</sup> b<span class="tip"> </span> c<span class="hawashi">second</span></p>`,
			start: 5,
			want:  "a [^5] b c [^6]",
			footnotes: []block.Footnote{
				{Number: 5, Body: "first"},
				{Number: 6, Body: "second"},
			},
			next: 7,
		},
		{
			name:      "inline footnote",
			html:      `<p>قال [2] انظر: المصدر</p>`,
			start:     1,
			want:      "قال [^2]",
			footnotes: []block.Footnote{{Number: 2, Body: "انظر: المصدر"}},
			next:      1,
		},
		{
			name:  "inline footnotes joined by a break",
			html:  `<p>[1] انظر: أ<br>[2] يُنظَر: ب</p>`,
			start: 1,
			want:  "[^1] [^2]",
			footnotes: []block.Footnote{
				{Number: 1, Body: "انظر: أ"},
				{Number: 2, Body: "يُنظَر: ب"},
			},
			next: 1,
		},
		{
			name:      "marker footnote takes precedence",
			html:      `<p>a<span class="tip">marker body</span></p><p>[1] انظر: inline body</p>`,
			start:     1,
			want:      "a [^1]\n\n[^1]",
			footnotes: []block.Footnote{{Number: 1, Body: "marker body"}},
			next:      2,
		},
	}

	tr := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tr.Transform(region(t, tt.html), tt.start)
			if out.Text != tt.want {
				t.Errorf("Text = %q, want %q", out.Text, tt.want)
			}
			if !reflect.DeepEqual(out.Footnotes, tt.footnotes) {
				t.Errorf("Footnotes = %v, want %v", out.Footnotes, tt.footnotes)
			}
			if out.Next != tt.next {
				t.Errorf("Next = %d, want %d", out.Next, tt.next)
			}
			b := block.Block{Text: out.Text, Footnotes: out.Footnotes}
			if l := b.CheckLinkage(); !l.OK() {
				t.Errorf("linkage broken: orphans=%v unused=%v", l.Orphans, l.Unused)
			}
		})
	}
}

func TestTransformAfter(t *testing.T) {
	defined := []block.Footnote{
		{Number: 1, Body: "أولى"},
		{Number: 2, Body: "ثانية"},
	}
	tests := []struct {
		name      string
		html      string
		start     int
		want      string
		footnotes []block.Footnote
		next      int
	}{
		{
			name:      "inline number already defined keeps its definition",
			html:      `<p>ب [1] انظر: آخر</p><p>ج<span class="tip">جديدة</span></p>`,
			start:     2,
			want:      "ب [^1]\n\nج [^3]",
			footnotes: []block.Footnote{{Number: 3, Body: "جديدة"}},
			next:      4,
		},
		{
			name:      "new inline number is defined",
			html:      `<p>د [5] ينظر: مصدر</p>`,
			start:     3,
			want:      "د [^5]",
			footnotes: []block.Footnote{{Number: 5, Body: "ينظر: مصدر"}},
			next:      3,
		},
	}

	tr := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tr.TransformAfter(region(t, tt.html), tt.start, defined)
			if out.Text != tt.want {
				t.Errorf("Text = %q, want %q", out.Text, tt.want)
			}
			if !reflect.DeepEqual(out.Footnotes, tt.footnotes) {
				t.Errorf("Footnotes = %v, want %v", out.Footnotes, tt.footnotes)
			}
			if out.Next != tt.next {
				t.Errorf("Next = %d, want %d", out.Next, tt.next)
			}
			all := append(append([]block.Footnote(nil), defined...), out.Footnotes...)
			b := block.Block{Text: "أ [^1] [^2]\n\n" + out.Text, Footnotes: all}
			if l := b.CheckLinkage(); !l.OK() {
				t.Errorf("linkage broken: orphans=%v unused=%v", l.Orphans, l.Unused)
			}
		})
	}
}

func TestTransform_EmptyRegion(t *testing.T) {
	tr := New(nil)

	out := tr.Transform(nil, 3)
	if out.Text != "" || len(out.Footnotes) != 0 || out.Next != 3 {
		t.Errorf("nil region: got %+v", out)
	}

	out = tr.Transform(region(t, "   "), 1)
	if out.Text != "" || len(out.Footnotes) != 0 {
		t.Errorf("blank region: got %+v", out)
	}

	empty := &goquery.Selection{}
	if out := tr.Transform(empty, 1); out.Text != "" {
		t.Errorf("empty selection: got %q", out.Text)
	}
}

func TestTransform_ReadOnly(t *testing.T) {
	r := region(t, `<p>a<span class="tip">b</span></p>`)
	before, _ := r.Html()

	tr := New(nil)
	first := tr.Transform(r, 1)
	after, _ := r.Html()
	if before != after {
		t.Error("Transform modified the region")
	}

	second := tr.Transform(r, 1)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated transform differs: %+v vs %+v", first, second)
	}
}

func TestNew_InvalidPatternFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NavPattern = "(["
	tr := New(cfg)

	out := tr.Transform(region(t, `<p>x <a href="#">التالي</a></p>`), 1)
	if out.Text != "x" {
		t.Errorf("expected default nav pattern to apply, got %q", out.Text)
	}
}
