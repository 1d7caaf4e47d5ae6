package applog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevelRecognizesEachName(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for name, want := range cases {
		if got := parseLevel(name); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewWritesToConfiguredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	log := New(Options{Level: "info", FilePath: path})

	log.Info().Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log file to contain the logged line")
	}
}

func TestNewFallsBackToConsoleWhenFileCannotOpen(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses the permission check this test relies on")
	}

	// A directory that can't be written into, so opening the log file
	// inside it fails.
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	log := New(Options{Level: "info", FilePath: filepath.Join(dir, "server.log")})
	log.Info().Msg("should not panic even though the file sink failed")
}
