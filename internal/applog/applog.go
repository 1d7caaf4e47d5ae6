// Package applog builds the server's zerolog logger: every line goes
// to stdout and, when configured, to an append-mode log file at the
// same time, timestamped the way the original system journal did.
package applog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const timestampLayout = "2006-01-02 15:04:05"

// Options configures the logger build.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// FilePath, if non-empty, is opened in append mode as a second sink.
	// A failure to open it falls back to stderr-only reporting plus a
	// stdout-only logger; the server does not refuse to start over a
	// log file it cannot create.
	FilePath string
}

// New builds a zerolog.Logger writing to stdout and, if configured, to
// FilePath, both using a "[YYYY-MM-DD HH:MM:SS]" timestamp.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = timestampLayout

	writers := []io.Writer{consoleWriter(os.Stdout)}
	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "applog: failed to open log file %q: %v\n", opts.FilePath, err)
		} else {
			writers = append(writers, consoleWriter(f))
		}
	}

	multi := zerolog.MultiLevelWriter(writers...)
	logger := zerolog.New(zerolog.SyncWriter(multi)).Level(parseLevel(opts.Level)).With().Timestamp().Logger()
	return logger
}

// consoleWriter renders each line as "[timestamp] level message
// field=value ..." without color codes, matching a plain log file's
// layout whether the sink is a terminal or a file.
func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: timestampLayout,
		FormatTimestamp: func(i interface{}) string {
			ts, ok := i.(string)
			if !ok {
				return fmt.Sprintf("[%s]", time.Now().Format(timestampLayout))
			}
			return "[" + ts + "]"
		},
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
