package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log destination and level.
type Options struct {
	Level string // debug|info|warn|error
	// File receives logs when set. Otherwise logs go to stderr, or nowhere
	// when Quiet is set (the TUI owns the terminal).
	File  string
	Quiet bool
}

// New builds a zap logger. The returned func flushes and closes it.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	file := strings.TrimSpace(opts.File)
	if file == "" && opts.Quiet {
		return zap.NewNop(), func() {}, nil
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, err
		}
		config.OutputPaths = []string{file}
		config.ErrorOutputPaths = []string{file}
	} else {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("invalid log level %q (expected debug|info|warn|error)", s)
	}
	return l, nil
}
