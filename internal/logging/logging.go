// Package logging builds the hclog loggers handed to every component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger named name writing to stderr. level is an hclog level name
// (trace, debug, info, warn, error); anything unrecognised falls back to info.
func New(name, level string, json bool) hclog.Logger {
	return NewWithOutput(os.Stderr, name, level, json)
}

// NewWithOutput is New writing to w.
func NewWithOutput(w io.Writer, name, level string, json bool) hclog.Logger {
	lvl := hclog.LevelFromString(strings.TrimSpace(level))
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Level:           lvl,
		Output:          w,
		JSONFormat:      json,
		IncludeLocation: false,
		TimeFormat:      "2006-01-02T15:04:05.000Z0700",
	})
}
