package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewLogger builds the application logger. While the TUI owns the terminal
// logs only go to cfg.LogFile; with no file they are dropped.
func NewLogger(cfg Config, tui bool) (hclog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	} else if tui {
		return hclog.NewNullLogger(), closer, nil
	}

	level := hclog.LevelFromString(cfg.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "quantizer",
		Level:  level,
		Output: out,
		Color:  hclog.ColorOff,
	}), closer, nil
}
