// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zap.Logger with workflow-specific helpers.
type Logger struct {
	*zap.Logger
	config *Config
}

// New builds a logger that writes human-readable lines to stdout and JSON
// lines to a rotating file.
func New(cfg *Config) (*Logger, error) {
	return newWithConsole(cfg, os.Stdout)
}

func newWithConsole(cfg *Config, console io.Writer) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(console), level),
	}
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		config: cfg,
	}, nil
}

// WithOperation returns a logger tagged with the operation name and a fresh
// correlation id, so every line of one workflow run can be grouped.
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
		zap.Time("start_time", time.Now().UTC()),
	)
}

// WithTransaction adds the transaction signature to log lines.
func (l *Logger) WithTransaction(sig solana.Signature) *zap.Logger {
	return l.With(zap.Stringer("signature", sig))
}

// WithNetwork tags lines with the active network profile.
func (l *Logger) WithNetwork(name string) *zap.Logger {
	return l.With(zap.String("network", name))
}

// Sync flushes buffered entries, ignoring the errors terminals return for stdout.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if err != nil && (err.Error() == "sync /dev/stdout: invalid argument" ||
		err.Error() == "sync /dev/stdout: inappropriate ioctl for device") {
		return nil
	}
	return err
}

// TrackPerformance logs the duration of an operation when the returned func is called.
func (l *Logger) TrackPerformance(operation string) (end func()) {
	start := time.Now()
	opLogger := l.WithOperation(operation)
	opLogger.Debug("Starting operation")

	return func() {
		opLogger.Debug("Operation completed", zap.Duration("duration", time.Since(start)))
	}
}
