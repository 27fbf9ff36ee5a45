// Package logging builds the hclog loggers used across stagepack.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	Prefix       = "🎬 "
	DefaultLevel = "warn"
)

// Level is a resolved log level and where it came from.
type Level struct {
	Name   string
	JSON   bool
	Source string
}

// ResolveLevel picks the level from the CLI value, STAGEPACK_LOG_LEVEL or
// the default, in that order. A "json" or "json:<level>" value selects JSON
// output; so does STAGEPACK_JSON_LOG=1.
func ResolveLevel(cliLevel string) Level {
	var l Level
	switch {
	case cliLevel != "":
		l = Level{Name: cliLevel, Source: "CLI --log-level"}
	case os.Getenv("STAGEPACK_LOG_LEVEL") != "":
		l = Level{Name: os.Getenv("STAGEPACK_LOG_LEVEL"), Source: "STAGEPACK_LOG_LEVEL"}
	default:
		l = Level{Name: DefaultLevel, Source: "default"}
	}

	if rest, ok := strings.CutPrefix(strings.ToLower(l.Name), "json"); ok {
		l.JSON = true
		l.Name = "info"
		if lvl, ok := strings.CutPrefix(rest, ":"); ok && lvl != "" {
			l.Name = lvl
		}
	}
	if os.Getenv("STAGEPACK_JSON_LOG") == "1" {
		l.JSON = true
	}
	return l
}

// NewLogger creates an hclog logger with standard settings. Text output
// gets the stagepack prefix on every line.
func NewLogger(name string, level Level, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}
	if !level.JSON {
		output = NewPrefixWriter(Prefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level.Name),
		JSONFormat: level.JSON,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Setup resolves the level and output for a command. When STAGEPACK_LOG_PATH
// is set, logs are appended to that file; the returned closer releases it.
func Setup(name, cliLevel string) (hclog.Logger, io.Closer) {
	level := ResolveLevel(cliLevel)

	var output io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if path := os.Getenv("STAGEPACK_LOG_PATH"); path != "" {
		if file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			output = file
			closer = file
		}
	}

	logger := NewLogger(name, level, output)
	logger.Debug("Log level", "level", level.Name, "source", level.Source)
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
