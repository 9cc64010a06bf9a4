package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Fatalf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Laid out")
	if out := buf.String(); !strings.Contains(out, "Laid out") || !strings.Contains(out, "ms") {
		t.Fatalf("unexpected progress output %q", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Fatalf("missing logger should fall back to log.Default()")
	}
	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Fatalf("logger not carried through context")
	}
}

const cliDoc = `
doc CLI v1 {
  page default {
    par width 30mm {
      text size 10pt { "Hello ${user.name}, this paragraph wraps." }
    }
  }
}
`

func writeFixtures(t *testing.T) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	input = filepath.Join(dir, "doc.pbx")
	if err := os.WriteFile(input, []byte(cliDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte(`{"user":{"name":"Ada"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "parbox.toml"), []byte("[page]\nsize = \"A5\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, input
}

func run(t *testing.T, args ...string) (stdout, logs string, err error) {
	t.Helper()
	var out, logBuf bytes.Buffer
	root := newRootCmd(&logBuf)
	root.SetOut(&out)
	root.SetErr(&logBuf)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), logBuf.String(), err
}

func TestLayoutCommand(t *testing.T) {
	dir, input := writeFixtures(t)
	stdout, _, err := run(t, "layout", input,
		"--data", filepath.Join(dir, "data.json"),
		"--config", filepath.Join(dir, "parbox.toml"),
		"--items")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	var res struct {
		Pages []struct {
			Width      float64
			Paragraphs []struct {
				Lines int
				Items []struct{ Content string }
			}
		}
	}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("layout output is not JSON: %v\n%s", err, stdout)
	}
	if len(res.Pages) != 1 || res.Pages[0].Width != 148 {
		t.Fatalf("config page size not applied: %+v", res.Pages)
	}
	para := res.Pages[0].Paragraphs[0]
	if para.Items[1].Content != "Ada," {
		t.Fatalf("data not bound, second word %q", para.Items[1].Content)
	}
	if para.Lines == 0 {
		t.Fatalf("paragraph should wrap within 30mm")
	}
}

func TestRenderCommand(t *testing.T) {
	dir, input := writeFixtures(t)
	debug := filepath.Join(dir, "debug.json")
	_, logs, err := run(t, "render", input, "-v", "--format", "svg", "--debug-json", debug)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out, err := os.ReadFile(filepath.Join(dir, "doc.svg"))
	if err != nil {
		t.Fatalf("default output path: %v", err)
	}
	if !strings.Contains(string(out), "<svg") {
		t.Fatalf("output is not SVG")
	}
	if _, err := os.Stat(debug); err != nil {
		t.Fatalf("debug json not written: %v", err)
	}
	if !strings.Contains(logs, "Rendered") || !strings.Contains(logs, "parsed document") {
		t.Fatalf("expected info and debug logs, got %q", logs)
	}

	pdfPath := filepath.Join(dir, "out.pdf")
	if _, _, err := run(t, "render", input, "-o", pdfPath); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if pdf, _ := os.ReadFile(pdfPath); !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderCommandCancelled(t *testing.T) {
	dir, input := writeFixtures(t)
	output := filepath.Join(dir, "cancelled.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var logBuf bytes.Buffer
	root := newRootCmd(&logBuf)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&logBuf)
	root.SetArgs([]string{"render", input, "-o", output})

	if err := root.ExecuteContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cancelled render must not write output, stat err %v", err)
	}
	if strings.Contains(logBuf.String(), "Rendered") {
		t.Fatalf("cancelled render logged success: %q", logBuf.String())
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir, input := writeFixtures(t)
	if _, _, err := run(t, "render", input, "--format", "png"); err == nil {
		t.Fatalf("unknown format should fail")
	}
	if _, _, err := run(t, "render", filepath.Join(dir, "missing.pbx")); err == nil {
		t.Fatalf("missing input should fail")
	}
	if _, _, err := run(t, "render"); err == nil {
		t.Fatalf("missing argument should fail")
	}
}

func TestVersionFlag(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-02")
	defer SetVersion("dev", "", "")
	stdout, _, err := run(t, "--version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stdout, "parbox 1.2.3") || !strings.Contains(stdout, "abc123") {
		t.Fatalf("unexpected version output %q", stdout)
	}
}
