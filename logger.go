package bthome

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger denotes a generic logger interface
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// NullLogger denotes a logger that discards all messages
type NullLogger struct{}

// Debugf discards the message
func (l *NullLogger) Debugf(format string, args ...interface{}) {}

// Infof discards the message
func (l *NullLogger) Infof(format string, args ...interface{}) {}

// Warnf discards the message
func (l *NullLogger) Warnf(format string, args ...interface{}) {}

// Errorf discards the message
func (l *NullLogger) Errorf(format string, args ...interface{}) {}

// Fatalf discards the message
func (l *NullLogger) Fatalf(format string, args ...interface{}) {}

// NewDefaultLogger instantiates a zap based logger writing to stderr
func NewDefaultLogger(debug bool) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	return logger.Sugar()
}
