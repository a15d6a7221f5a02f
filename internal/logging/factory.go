package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Options selects and configures a Logger implementation.
type Options struct {
	Backend string // slog (default) or zap
	Level   string // debug, info, warn, error
	Format  string // text/console or json
	Output  io.Writer
}

// New builds a Logger from opts. Unknown levels fall back to info.
func New(opts Options) (Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendSlog:
		return newSlog(opts, out), nil
	case BackendZap:
		return newZap(opts, out), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newSlog(opts Options, out io.Writer) *SlogLogger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = slog.LevelInfo
	}

	ho := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(out, ho)
	} else {
		h = slog.NewTextHandler(out, ho)
	}
	return NewSlogLogger(slog.New(h))
}

func newZap(opts Options, out io.Writer) *ZapLogger {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var enc zapcore.Encoder
	if strings.EqualFold(opts.Format, "json") {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), zap.NewAtomicLevelAt(level))
	return NewZapLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
}
