// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
)

// Setup installs log.DefaultLogger according to cfg, writing to stderr.
func Setup(cfg config.LoggingConfig) {
	SetupWriter(cfg, os.Stderr)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(cfg config.LoggingConfig, w io.Writer) {
	log.DefaultLogger = New(cfg, w)
}

// New builds a logger without installing it.
func New(cfg config.LoggingConfig, w io.Writer) log.Logger {
	l := log.Logger{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: "15:04:05",
	}
	if strings.EqualFold(cfg.Format, "json") {
		l.TimeFormat = ""
		l.Writer = &log.IOWriter{Writer: w}
		return l
	}
	l.Writer = &log.ConsoleWriter{
		Writer:         w,
		ColorOutput:    isTerminal(w),
		QuoteString:    true,
		EndWithMessage: true,
	}
	return l
}

// ParseLevel maps a config level to a log level; unknown values mean info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return log.IsTerminal(f.Fd())
}
