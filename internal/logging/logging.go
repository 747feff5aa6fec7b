// Package logging builds the zap logger shared by the CLI, the TUI and the HTTP server.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/elsayed85/quick-rag/internal/config"
)

// New returns a logger writing to stderr and, when cfg.File is set, to a rotated JSON file.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var consoleEncoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		consoleEncoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	case "console", "":
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		cores = append(cores, fileCore(cfg.File, level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// NewFileOnly logs only to cfg.File, or nowhere when it is empty.
// The TUI uses it so log lines do not tear the terminal UI.
func NewFileOnly(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return zap.New(fileCore(cfg.File, level), zap.AddCaller()), nil
}

func parseLevel(s string) (zapcore.Level, error) {
	level := zap.InfoLevel
	if s == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderConfig
}

func fileCore(path string, level zapcore.Level) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 5,
		MaxAge:     30, // Days
		Compress:   true,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(rotator), level)
}
