package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// Logger is the minimal structured logging interface used throughout the
// framework. Args are alternating key/value pairs, slog style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LogLevel decouples user-facing level configuration from slog levels.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLogLevel maps "debug", "info", "warn"/"warning" or "error" to a
// LogLevel. Anything else, including the empty string, means info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	}
	return LogLevelInfo
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// SlogAdapter exposes a *slog.Logger through the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }
func (s *SlogAdapter) Info(msg string, args ...any)  { s.Logger.Info(msg, args...) }
func (s *SlogAdapter) Warn(msg string, args ...any)  { s.Logger.Warn(msg, args...) }
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter wraps an existing *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger { return &SlogAdapter{Logger: logger} }

// NewDefaultSlogLogger wraps slog.Default().
func NewDefaultSlogLogger() Logger { return NewSlogAdapter(slog.Default()) }

// NoOpLogger discards everything. Useful in tests.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...any) {}
func (NoOpLogger) Info(string, ...any)  {}
func (NoOpLogger) Warn(string, ...any)  {}
func (NoOpLogger) Error(string, ...any) {}

// LoggerConfig configures TripMeshLogger construction.
type LoggerConfig struct {
	Level       LogLevel
	Format      string // "json" or "text"
	Output      io.Writer
	AddSource   bool
	Component   string
	SessionID   string
	RunID       string
	CustomAttrs map[string]interface{}
}

// DefaultLoggerConfig is JSON output at info level with source locations.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout, AddSource: true, CustomAttrs: map[string]interface{}{}}
}

// TripMeshLogger adds contextual attributes (component, session, run) to
// every entry. With* methods return cheap copies; loggers are safe to share.
type TripMeshLogger struct {
	logger    *slog.Logger
	level     LogLevel
	context   map[string]interface{}
	component string
	sessionID string
	runID     string
}

// NewLogger builds a TripMeshLogger from cfg, or defaults when cfg is nil.
func NewLogger(cfg *LoggerConfig) *TripMeshLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &TripMeshLogger{
		logger:    slog.New(handler),
		level:     cfg.Level,
		context:   map[string]interface{}{},
		component: cfg.Component,
		sessionID: cfg.SessionID,
		runID:     cfg.RunID,
	}
}

// NewSlogLogger is a shorthand constructor over DefaultLoggerConfig.
func NewSlogLogger(level LogLevel, format string, addSource bool) *TripMeshLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

func (l *TripMeshLogger) clone() *TripMeshLogger {
	nl := *l
	nl.context = make(map[string]interface{}, len(l.context)+1)
	for k, v := range l.context {
		nl.context[k] = v
	}
	return &nl
}

// WithContext returns a copy with an extra key/value attached to every entry.
func (l *TripMeshLogger) WithContext(key string, value interface{}) *TripMeshLogger {
	nl := l.clone()
	nl.context[key] = value
	return nl
}

// WithComponent returns a copy tagged with a logical component name.
func (l *TripMeshLogger) WithComponent(c string) *TripMeshLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithSession returns a copy tagged with session and run identifiers.
func (l *TripMeshLogger) WithSession(sid, rid string) *TripMeshLogger {
	nl := l.clone()
	nl.sessionID = sid
	nl.runID = rid
	return nl
}

func (l *TripMeshLogger) attrs() []slog.Attr {
	out := make([]slog.Attr, 0, len(l.context)+4)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.sessionID != "" {
		out = append(out, slog.String("session_id", l.sessionID))
	}
	if l.runID != "" {
		out = append(out, slog.String("run_id", l.runID))
	}
	out = append(out, slog.Time("timestamp", time.Now()))
	for k, v := range l.context {
		out = append(out, slog.Any(k, v))
	}
	return out
}

func (l *TripMeshLogger) log(level slog.Level, min LogLevel, msg string, args ...interface{}) {
	if l.level > min {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.LogAttrs(context.Background(), level, msg, l.attrs()...)
}

func (l *TripMeshLogger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, LogLevelDebug, msg, args...)
}

func (l *TripMeshLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, LogLevelInfo, msg, args...)
}

func (l *TripMeshLogger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, LogLevelWarn, msg, args...)
}

func (l *TripMeshLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, LogLevelError, msg, args...)
}

// ErrorWithStack logs an error together with a stack snapshot.
func (l *TripMeshLogger) ErrorWithStack(err error, msg string, args ...interface{}) {
	if l.level > LogLevelError {
		return
	}
	attrs := l.attrs()
	attrs = append(attrs, slog.String("error", err.Error()), slog.String("error_type", fmt.Sprintf("%T", err)))
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	attrs = append(attrs, slog.String("stack_trace", string(buf[:n])))
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

func (l *TripMeshLogger) outcome(attrs []slog.Attr, okMsg, failMsg string, success bool, err error) {
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	level, msg := slog.LevelInfo, okMsg
	if !success {
		level, msg = slog.LevelError, failMsg
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogToolCall records duration and outcome of a tool invocation.
func (l *TripMeshLogger) LogToolCall(tool string, dur time.Duration, success bool, err error) {
	attrs := append(l.attrs(),
		slog.String("tool_name", tool),
		slog.Duration("duration", dur),
		slog.Bool("success", success))
	l.outcome(attrs, "Tool execution completed", "Tool execution failed", success, err)
}

// LogLLMCall records latency, token usage and outcome of a model call.
func (l *TripMeshLogger) LogLLMCall(model string, tokens int, dur time.Duration, success bool, err error) {
	attrs := append(l.attrs(),
		slog.String("model", model),
		slog.Int("token_count", tokens),
		slog.Duration("duration", dur),
		slog.Bool("success", success))
	l.outcome(attrs, "LLM call completed", "LLM call failed", success, err)
}

// LogFlowExecution records aggregate flow run metrics.
func (l *TripMeshLogger) LogFlowExecution(flow string, steps int, dur time.Duration, success bool, err error) {
	attrs := append(l.attrs(),
		slog.String("flow_type", flow),
		slog.Int("step_count", steps),
		slog.Duration("duration", dur),
		slog.Bool("success", success))
	l.outcome(attrs, "Flow execution completed", "Flow execution failed", success, err)
}

// StartTimer returns a closure that logs the elapsed time when called.
func (l *TripMeshLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Info("Operation completed", "operation", op, "duration", time.Since(start)) }
}

// LogPerformance logs arbitrary metrics for an operation.
func (l *TripMeshLogger) LogPerformance(op string, dur time.Duration, metrics map[string]interface{}) {
	attrs := append(l.attrs(), slog.String("operation", op), slog.Duration("duration", dur))
	for k, v := range metrics {
		attrs = append(attrs, slog.Any("metric_"+k, v))
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "Performance metrics", attrs...)
}
