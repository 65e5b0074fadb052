package util

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns the compiler's logger writing to w. Verbose loggers report debug messages.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "cilc",
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// Discard returns a logger that drops every message.
func Discard() *log.Logger {
	return NewLogger(io.Discard, false)
}
