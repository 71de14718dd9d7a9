package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats accepted in Config.Format.
const (
	FormatPretty  = "pretty"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger is a zerolog logger carrying the sessionscribe field conventions.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// Init builds the global logger from cfg and points zerolog's package
// logger at the same sink.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg, cfg.ServiceName))
	if isConsole(cfg.Format) {
		log.Logger = consoleLogger(&cfg, cfg.ServiceName, outputWriter(cfg.Output))
	}
}

// New creates a logger writing to cfg.Output.
func New(cfg *Config, service string) *Logger {
	return NewWithWriter(cfg, service, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger that writes to w. An unknown level falls
// back to info.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if isConsole(cfg.Format) {
		zl = consoleLogger(cfg, service, w)
	} else {
		zl = zerolog.New(w)
		if service != "" {
			zl = zl.With().Str(FieldService, service).Logger()
		}
	}
	zl = zl.Level(level)
	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}
	return &Logger{zl: zl, service: service}
}

// NewDefault creates an info-level console logger on stderr.
func NewDefault(service string) *Logger {
	return New(&Config{Level: "info", Format: FormatConsole, Output: "stderr", Timestamp: true}, service)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

type contextKey struct{}

// ContextWithRunID tags ctx with the id of one reconcile run.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, contextKey{}, runID)
}

// RunIDFromContext returns the id stored by ContextWithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

func (l *Logger) with(fn func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{zl: fn(l.zl.With()).Logger(), service: l.service}
}

// WithContext adds the run id carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id := RunIDFromContext(ctx)
	if id == "" {
		return l
	}
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str(FieldRunID, id) })
}

// WithComponent tags entries with the emitting package.
func (l *Logger) WithComponent(name string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str(FieldComponent, name) })
}

// WithSource tags entries with a recording's source id.
func (l *Logger) WithSource(sourceID string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str(FieldSourceID, sourceID) })
}

// WithFields attaches every key in fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

// WithError attaches err under the "error" key.
func (l *Logger) WithError(err error) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

var globalLogger *Logger

// SetGlobalLogger replaces the logger returned by GetGlobalLogger.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the logger set by Init, creating a default one
// on first use.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("")
	}
	return globalLogger
}

func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

func isConsole(format string) bool {
	return slices.Contains([]string{FormatConsole, FormatPretty, "text"}, strings.ToLower(format))
}

// outputWriter maps Config.Output to a stream. stdout is opt-in because
// export writes Markdown there.
func outputWriter(output string) *os.File {
	if strings.EqualFold(output, "stdout") {
		return os.Stdout
	}
	return os.Stderr
}

func consoleLogger(cfg *Config, service string, out io.Writer) zerolog.Logger {
	tag := ""
	if len(service) >= 3 {
		tag = "[" + strings.ToUpper(service[:3]) + "]"
		if !cfg.NoColor {
			tag = "\033[34m" + tag + "\033[0m"
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			return tag + levelTag(strings.ToUpper(fmt.Sprint(i)), cfg.NoColor)
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprintf("%s:", i) },
		FormatFieldValue: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
	})
}

var levels = map[string]struct{ short, color string }{
	"TRACE": {"TRC", "\033[90m"},
	"DEBUG": {"DBG", "\033[36m"},
	"INFO":  {"INF", "\033[32m"},
	"WARN":  {"WRN", "\033[33m"},
	"ERROR": {"ERR", "\033[31m"},
	"FATAL": {"FTL", "\033[35m"},
}

func levelTag(lvl string, noColor bool) string {
	l, ok := levels[lvl]
	if !ok {
		return "[" + lvl + "]"
	}
	if noColor {
		return "[" + l.short + "]"
	}
	return l.color + "[" + l.short + "]\033[0m"
}
