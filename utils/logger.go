package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// InitLogger configures InfoLogger for stdout and ErrorLogger for stderr.
// format is "text" or "json"; unknown levels fall back to info. ErrorLogger
// prints warnings too, which is where rejected requests are reported.
func InitLogger(level, format string) {
	InitLoggerWithWriters(level, format, os.Stdout, os.Stderr)
}

// InitLoggerWithWriters is InitLogger with explicit outputs.
func InitLoggerWithWriters(level, format string, out, errOut io.Writer) {
	InfoLogger.SetOutput(out)
	ErrorLogger.SetOutput(errOut)

	InfoLogger.SetFormatter(newFormatter(format))
	ErrorLogger.SetFormatter(newFormatter(format))

	InfoLogger.SetLevel(ParseLevel(level))
	ErrorLogger.SetLevel(logrus.WarnLevel)
}

func newFormatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
	}
}

// ParseLevel converts a level name to a logrus level, defaulting to info.
func ParseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
