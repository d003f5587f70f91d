package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestTeeRespectsLevels(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	h := tee{
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	log := slog.New(h).With("component", "test")

	log.Info("recording started")
	log.Error("upload failed")

	if !strings.Contains(infoBuf.String(), "recording started") || !strings.Contains(infoBuf.String(), "upload failed") {
		t.Fatalf("info handler missing records: %s", infoBuf.String())
	}
	if strings.Contains(errBuf.String(), "recording started") {
		t.Fatalf("error handler got info record: %s", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "component=test") {
		t.Fatalf("attrs not propagated: %s", errBuf.String())
	}
}

func TestSetupWritesFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "voice-input.log")
	closer, err := Setup("info", path)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	slog.Info("hello from test")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "hello from test") {
		t.Fatalf("log file missing record: %s", b)
	}
}
