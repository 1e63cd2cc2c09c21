package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config configures a logger.
type Config struct {
	// Level is the minimum level: debug, info, warn, error. Defaults to info.
	Level string `yaml:"level" mapstructure:"level"`
	// Format is "json" or "console". Defaults to json.
	Format string `yaml:"format" mapstructure:"format"`
	// Output is "stdout" or "stderr". Defaults to stderr.
	Output string `yaml:"output" mapstructure:"output"`
}

// Logger wraps zerolog.Logger with component context.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger from config.
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = outputWriter(cfg.Output)
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewDefault creates a json logger at info level on stderr.
func NewDefault() *Logger {
	return New(Config{})
}

// Nop creates a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// WithFields returns a logger with additional permanent fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	zc := l.zl.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{zl: zc.Logger()}
}

// Z returns the underlying zerolog.Logger.
func (l *Logger) Z() zerolog.Logger { return l.zl }

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	emit(l.zl.Debug(), msg, fields)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	emit(l.zl.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	emit(l.zl.Warn(), msg, fields)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]any) {
	emit(l.zl.Error(), msg, fields)
}

// ErrorErr logs an error message with an error field.
func (l *Logger) ErrorErr(msg string, err error, fields ...map[string]any) {
	emit(l.zl.Error().Err(err), msg, fields)
}

func emit(event *zerolog.Event, msg string, fields []map[string]any) {
	for _, fm := range fields {
		for k, v := range fm {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

func outputWriter(output string) *os.File {
	if strings.EqualFold(output, "stdout") {
		return os.Stdout
	}
	return os.Stderr
}

// Fields builds a field map from alternating key-value pairs.
//
//	log.Info("cache evicted", logger.Fields("key", key, "entries", n))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}
