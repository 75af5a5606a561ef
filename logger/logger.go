package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config selects level and output format.
type Config struct {
	Level  string `json:"level" yaml:"level" envconfig:"LEVEL"`
	Format string `json:"format" yaml:"format" envconfig:"FORMAT"`
}

// DefaultConfig logs info and above as text.
var DefaultConfig = Config{Level: "info", Format: "text"}

// New builds a logrus logger writing to out.
//
// Format is "text" (default) or "json". Unknown levels are an error so a
// typo in configuration does not silently hide warnings.
func New(out io.Writer, cfg Config) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(out)

	levelStr := strings.TrimSpace(cfg.Level)
	if levelStr == "" {
		levelStr = DefaultConfig.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("logger.New: %w", err)
	}
	l.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text", "console":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("logger.New: unknown format %q", cfg.Format)
	}
	return l, nil
}
