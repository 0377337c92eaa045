package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func capture(t *testing.T, opts Options) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	opts.Output = buf
	Init(opts)
	t.Cleanup(func() { Init(Options{}) })
	return buf
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		logged  []string
		dropped []string
	}{
		{"default", Options{}, []string{"info", "warn", "error"}, []string{"debug"}},
		{"debug", Options{Debug: true}, []string{"debug", "info", "warn", "error"}, nil},
		{"quiet", Options{Quiet: true}, []string{"error"}, []string{"debug", "info", "warn"}},
		{"quiet wins over debug", Options{Debug: true, Quiet: true}, []string{"error"}, []string{"debug", "info"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.opts)
			Debug("msg-debug")
			Info("msg-info")
			Warn("msg-warn")
			Error("msg-error")

			out := buf.String()
			for _, l := range tt.logged {
				if !strings.Contains(out, "msg-"+l) {
					t.Errorf("expected %s message in %q", l, out)
				}
			}
			for _, l := range tt.dropped {
				if strings.Contains(out, "msg-"+l) {
					t.Errorf("did not expect %s message in %q", l, out)
				}
			}
		})
	}
}

func TestOptions_Level(t *testing.T) {
	if (Options{Debug: true}).Level() != slog.LevelDebug {
		t.Error("expected debug level")
	}
	if (Options{Debug: true, Quiet: true}).Level() != slog.LevelError {
		t.Error("expected quiet to win")
	}
}

func TestEnabled(t *testing.T) {
	capture(t, Options{})
	if Enabled(slog.LevelDebug) {
		t.Error("debug should be disabled by default")
	}
	if !Enabled(slog.LevelWarn) {
		t.Error("warn should be enabled by default")
	}
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, Options{JSON: true})
	Info("fetched", "url", "https://dorar.net/tafseer/1", "status", 200)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "fetched" || rec["url"] != "https://dorar.net/tafseer/1" || rec["status"] != float64(200) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestTextFormat(t *testing.T) {
	buf := capture(t, Options{})
	Info("extracted", "chars", 42)
	if !strings.Contains(buf.String(), "msg=extracted") || !strings.Contains(buf.String(), "chars=42") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}

func TestCustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Logger: slog.New(slog.NewTextHandler(buf, nil)), Quiet: true})
	t.Cleanup(func() { Init(Options{}) })

	Info("custom")
	if !strings.Contains(buf.String(), "custom") {
		t.Error("custom logger should ignore the other options")
	}
}

func TestWith(t *testing.T) {
	buf := capture(t, Options{})
	With("unit", "الفاتحة").Info("unit done")
	if !strings.Contains(buf.String(), "unit=الفاتحة") {
		t.Errorf("expected attribute in %q", buf.String())
	}
}

func TestContextVariants(t *testing.T) {
	buf := capture(t, Options{})
	ctx := context.Background()
	InfoContext(ctx, "info with context")
	WarnContext(ctx, "warn with context")

	out := buf.String()
	if !strings.Contains(out, "info with context") || !strings.Contains(out, "warn with context") {
		t.Errorf("unexpected output %q", out)
	}
}
