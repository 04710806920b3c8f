package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"vehicle/api/internal/config"
)

// New builds the service logger. Unknown levels fall back to info.
func New(cfg config.Settings) *logrus.Logger {
	return newWithOutput(cfg, os.Stdout)
}

func newWithOutput(cfg config.Settings, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
