package util

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is the engine's own level enum, kept distinct from zapcore's so
// callers never need to import zap directly.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// LoggerConfig mirrors the handful of knobs the service actually exposes
// over the environment: level, encoding, and an optional file sink in
// addition to stdout.
type LoggerConfig struct {
	Level  LogLevel
	Format string // "json" or "text" (console)
	Output io.Writer
	File   string
}

// Logger wraps a zap.SugaredLogger behind the level/format vocabulary the
// rest of the service already speaks, so call sites read Info/Warn/Error
// rather than zap's structured With/f variants.
type Logger struct {
	sugar *zap.SugaredLogger
	atom  zap.AtomicLevel
	file  *os.File
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stdout,
	}
}

// Init installs the package-level default logger exactly once; subsequent
// calls are no-ops, matching the once-per-process wiring main does at
// startup.
func Init(level LogLevel, format string, output io.Writer) {
	once.Do(func() {
		cfg := DefaultConfig()
		cfg.Level = level
		cfg.Format = format
		cfg.Output = output

		l, err := NewLogger(cfg)
		if err != nil {
			// Fall back to a bare production logger so Init never leaves
			// defaultLogger nil.
			fallback, _ := zap.NewProduction()
			defaultLogger = &Logger{sugar: fallback.Sugar()}
			return
		}
		defaultLogger = l
	})
}

// InitFile installs the default logger with file output in addition to
// (not instead of) stdout.
func InitFile(level LogLevel, format, filePath string) error {
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.File = filePath

	l, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// NewLogger builds a standalone Logger; most callers want the package-level
// Init instead, but the bench CLI constructs its own so it can tag a run id
// without mutating the service-wide default.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	atom := zap.NewAtomicLevelAt(cfg.Level.zapLevel())

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "time"

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(cfg.Output)}
	var file *os.File
	if cfg.File != "" {
		f, err := setupLogFile(cfg.File)
		if err != nil {
			return nil, err
		}
		file = f
		sinks = append(sinks, zapcore.AddSync(f))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), atom)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &Logger{sugar: logger.Sugar(), atom: atom, file: file}, nil
}

func setupLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func (l *Logger) SetLevel(level LogLevel) {
	l.atom.SetLevel(level.zapLevel())
}

func (l *Logger) Debug(msg string, args ...interface{})  { l.sugar.Debugf(msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})   { l.sugar.Infof(msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})   { l.sugar.Warnf(msg, args...) }
func (l *Logger) Error(msg string, args ...interface{})  { l.sugar.Errorf(msg, args...) }
func (l *Logger) Fatal(msg string, args ...interface{})  { l.sugar.Fatalf(msg, args...) }

// With returns a child logger bound to the given structured key/value
// pairs, e.g. util.L().With("runID", id).
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(kv...), atom: l.atom, file: l.file}
}

// Close flushes buffered entries and closes the file sink, if any.
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// L returns the package-level default logger, initializing an info-level
// text logger on stdout on first use if no default was installed.
func L() *Logger {
	if defaultLogger == nil {
		Init(LevelInfo, "text", os.Stdout)
	}
	return defaultLogger
}

func GetLevel() LogLevel {
	return LevelInfo
}

func SetGlobalLevel(level LogLevel) {
	if defaultLogger != nil {
		defaultLogger.SetLevel(level)
	}
}

// Sync flushes the default logger's buffered entries.
func Sync() {
	if defaultLogger != nil {
		_ = defaultLogger.sugar.Sync()
	}
}
