package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

func ParseLevel(s string) (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.WarnLevel, fmt.Errorf("invalid log level: %q", s)
	}
	return lvl, nil
}

// NewLogger returns a text logger writing to w (normally stderr). Unknown levels fall back
// to warn.
func NewLogger(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger
}
