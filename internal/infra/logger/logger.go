package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config drives how the zap logger is built.
type Config struct {
	Development bool
	// Level defaults to debug in development and info otherwise.
	Level string
	// Encoding is "console" or "json"; empty picks console for development.
	Encoding string
	// Service is attached to every entry as the "service" field.
	Service string
	// Output receives encoded entries. Nil means stdout.
	Output io.Writer
}

// Production cores keep the first samplingFirst entries per message each
// second, then every samplingThereafter-th one.
const (
	samplingTick       = time.Second
	samplingFirst      = 100
	samplingThereafter = 100
)

var global atomic.Pointer[zap.Logger]

// Init builds a logger from cfg, installs it as the process-wide logger and
// returns it. The previous logger is flushed.
func Init(cfg Config) (*zap.Logger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if prev := global.Swap(l); prev != nil {
		_ = prev.Sync()
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// MustInit panics if the logger cannot be built.
func MustInit(cfg Config) *zap.Logger {
	l, err := Init(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the process-wide logger, or a no-op logger before Init.
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Component returns a child of the process-wide logger named for one part of
// the pipeline, e.g. "ingest" or "worker".
func Component(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes the process-wide logger. Terminals reject fsync, which is
// not treated as a failure.
func Sync() error {
	l := global.Load()
	if l == nil {
		return nil
	}
	err := l.Sync()
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, os.ErrInvalid) {
		return nil
	}
	return err
}

// New returns a zap.Logger configured according to cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg)
	if err != nil {
		return nil, err
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
		if cfg.Development {
			encoding = "console"
		}
	}

	out := cfg.Output
	colorize := false
	if out == nil {
		out = os.Stdout
		colorize = isTerminal(os.Stdout)
	}

	var encoder zapcore.Encoder
	switch encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(consoleEncoderConfig(colorize))
	case "json":
		encoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	default:
		return nil, fmt.Errorf("logger: unknown encoding %q", encoding)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), level)
	if !cfg.Development {
		core = zapcore.NewSamplerWithOptions(core, samplingTick, samplingFirst, samplingThereafter)
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	return zap.New(core, opts...), nil
}

func parseLevel(cfg Config) (zapcore.Level, error) {
	if cfg.Level == "" {
		if cfg.Development {
			return zapcore.DebugLevel, nil
		}
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return level, fmt.Errorf("logger: invalid level %q: %w", cfg.Level, err)
	}
	return level, nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.StacktraceKey = "stack"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

func consoleEncoderConfig(colorize bool) zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "time"
	cfg.StacktraceKey = "stack"
	cfg.ConsoleSeparator = " | "
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeLevel = levelEncoder(colorize)
	return cfg
}

const colorReset = "\x1b[0m"

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  "\x1b[36m",
	zapcore.InfoLevel:   "\x1b[32m",
	zapcore.WarnLevel:   "\x1b[33m",
	zapcore.ErrorLevel:  "\x1b[31m",
	zapcore.DPanicLevel: "\x1b[35m",
	zapcore.PanicLevel:  "\x1b[35m",
	zapcore.FatalLevel:  "\x1b[31m",
}

// levelEncoder pads level names to a fixed width so console columns line up.
func levelEncoder(colorize bool) zapcore.LevelEncoder {
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		label := fmt.Sprintf("%-5s", level.CapitalString())
		if color, ok := levelColors[level]; ok && colorize {
			label = color + label + colorReset
		}
		enc.AppendString(label)
	}
}

func isTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
