package common

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with appropriate configuration.
// The production logger only reports warnings so a plain CLI run stays quiet.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return NewLoggerAtLevel(true, zapcore.DebugLevel)
	}
	return NewLoggerAtLevel(false, zapcore.WarnLevel)
}

// NewLoggerAtLevel builds a logger writing to stderr; stdout is kept for
// transcription output.
func NewLoggerAtLevel(development bool, level zapcore.Level) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Sampling = nil
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// MustNewLogger creates a new logger and panics if it fails
func MustNewLogger(development bool) *zap.Logger {
	logger, err := NewLogger(development)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}
