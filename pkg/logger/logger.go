package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before InitLogger runs so packages and tests never see nil.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()

	// Output to stdout instead of the default stderr
	l.Out = os.Stdout

	// Set JSON formatter for structured logging
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// InitLogger configures the shared logger. Unknown levels fall back to info.
func InitLogger(level string) {
	Log = newLogger()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// keep the package-level logrus helpers used across the codebase in sync
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(lvl)
}
