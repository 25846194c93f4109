package config

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a text logger on stderr at the named level.
func NewLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return log, nil
}

// Logger builds the logger described by the advanced settings. When a log
// file is configured, entries also go to a size-rotated file.
func (c *AppConfig) Logger() (*logrus.Logger, error) {
	log, err := NewLogger(c.Advanced.LogLevel)
	if err != nil {
		return nil, err
	}
	if c.Advanced.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   c.Advanced.LogFile,
			MaxSize:    c.Advanced.LogMaxSizeMB,
			MaxBackups: c.Advanced.LogMaxBackups,
		}))
	}
	return log, nil
}

// LoadDotEnv loads variables from the given .env files. Missing files are
// skipped; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
