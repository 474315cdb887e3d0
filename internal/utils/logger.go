package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvironmentVariable overrides the level passed to NewApplicationLogger.
const LogLevelEnvironmentVariable = "SUMMARIZE_LOG_LEVEL"

// NewApplicationLogger builds a console logger on standard error showing only
// the level and message. Messages below level are dropped unless
// SUMMARIZE_LOG_LEVEL selects another level.
func NewApplicationLogger(level zapcore.Level) (*zap.Logger, error) {
	resolvedLevel, err := ResolveLogLevel(level, os.Getenv(LogLevelEnvironmentVariable))
	if err != nil {
		return nil, err
	}
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), resolvedLevel)
	return zap.New(core), nil
}

// ResolveLogLevel returns the level named by override, or fallback when
// override is blank.
func ResolveLogLevel(fallback zapcore.Level, override string) (zapcore.Level, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return fallback, nil
	}
	level, err := zapcore.ParseLevel(override)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", LogLevelEnvironmentVariable, err)
	}
	return level, nil
}

// LoggerOrNop returns logger, or a no-op logger when it is nil.
func LoggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
