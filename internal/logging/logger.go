// Package logging provides leveled, key-value structured logging for
// the client's transport and façade layers. The key-value argument
// shape (msg string, args ...any pairs) mirrors logr's Logger.Info
// convention without taking on the dependency. Loggers are scoped with
// Sub (component name) and carry call context via WithCore / WithOp /
// WithError, so a transport line and a façade line about the same RPC
// read uniformly.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger wraps stdlib log with level support and optional component /
// key-value context.
type Logger struct {
	logger *log.Logger
	level  LogLevel
	prefix string // component prefix, e.g. "transport: "
	kvs    []any  // context pairs prepended to every message's args
	mu     sync.Mutex
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// LogLevel represents the available log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logging configuration
type Config struct {
	Level  LogLevel
	Output io.Writer
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// NewLogger creates a new logger
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		logger: log.New(output, "", log.LstdFlags),
		level:  config.Level,
	}
}

// Default returns the default logger, creating it if necessary
func Default() *Logger {
	mu.RLock()
	if defaultLogger != nil {
		defer mu.RUnlock()
		return defaultLogger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// derive copies the logger so scoped variants share the underlying
// writer but not each other's context.
func (l *Logger) derive() *Logger {
	return &Logger{
		logger: l.logger,
		level:  l.level,
		prefix: l.prefix,
		kvs:    append([]any(nil), l.kvs...),
	}
}

// Sub returns a logger that prefixes every message with a component
// name ("transport", "fakeserver", ...), so call sites don't repeat it
// per message.
func (l *Logger) Sub(name string) *Logger {
	d := l.derive()
	d.prefix = name + ": "
	return d
}

// WithCore returns a logger carrying the core uid on every line.
func (l *Logger) WithCore(coreUID uint32) *Logger {
	d := l.derive()
	d.kvs = append(d.kvs, "core-uid", coreUID)
	return d
}

// WithOp returns a logger carrying an RPC opcode name on every line.
func (l *Logger) WithOp(op string) *Logger {
	d := l.derive()
	d.kvs = append(d.kvs, "op", op)
	return d
}

// WithError returns a logger carrying an error on every line.
func (l *Logger) WithError(err error) *Logger {
	d := l.derive()
	d.kvs = append(d.kvs, "error", err)
	return d
}

// formatArgs converts key-value pairs to a string
func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var result string
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			if result != "" {
				result += " "
			}
			result += fmt.Sprintf("%v=%v", args[i], args[i+1])
		}
	}
	if result != "" {
		return " " + result
	}
	return ""
}

func (l *Logger) log(level LogLevel, levelTag, msg string, args ...any) {
	if level < l.level {
		return
	}
	if len(l.kvs) > 0 {
		args = append(append([]any(nil), l.kvs...), args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("%s %s%s%s", levelTag, l.prefix, msg, formatArgs(args))
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, "[DEBUG]", msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, "[INFO]", msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, "[WARN]", msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, "[ERROR]", msg, args...)
}

// Printf-style logging
func (l *Logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, "[DEBUG]", fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, "[INFO]", fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(LevelWarn, "[WARN]", fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, "[ERROR]", fmt.Sprintf(format, args...))
}

// Printf for compatibility
func (l *Logger) Printf(format string, args ...any) {
	l.Infof(format, args...)
}

// Global convenience functions
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
