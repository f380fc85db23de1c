package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileName is created under LOG_DIR_PATH when that is set.
const FileName = "fluentspeak.log"

// New builds the process logger from LOG_LEVEL, LOG_FORMAT (json|text) and
// LOG_DIR_PATH. Logs always go to stdout; with a log dir they are also
// appended to FileName there.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))

	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	if dir := strings.TrimSpace(os.Getenv("LOG_DIR_PATH")); dir != "" {
		f, err := openLogFile(dir)
		if err != nil {
			l.WithError(err).Warn("log file disabled")
		} else {
			l.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}
	return l
}

func parseLevel(s string) logrus.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return logrus.InfoLevel
	}
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
