package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// ApplicationLogger defines the interface for structured application logging.
type ApplicationLogger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)
	ErrorWithError(ctx context.Context, err error, message string, fields Fields)
	LogPerformance(ctx context.Context, operation string, duration time.Duration, fields Fields)
	WithComponent(component string) ApplicationLogger
}

// Fields represents structured logging fields.
type Fields map[string]interface{}

// Config represents logger configuration.
type Config struct {
	Level  string
	Format string // json, text
	Output string // stdout, stderr, buffer (for testing)
}

// LogEntry represents the structure of log entries.
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Component     string                 `json:"component,omitempty"`
	Operation     string                 `json:"operation,omitempty"`
	Duration      string                 `json:"duration,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Context key for correlation ID management.
type contextKey string

// CorrelationIDKey carries a correlation identifier through a request's
// context so concurrent operations can be tied together in log output.
const CorrelationIDKey contextKey = "correlation_id"

// WithCorrelationID returns a context carrying the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID, or "" when unset.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// applicationLoggerImpl implements ApplicationLogger.
type applicationLoggerImpl struct {
	config    Config
	component string
	buffer    *bytes.Buffer // for testing
	logger    *log.Logger
}

// NewApplicationLogger creates a new application logger.
func NewApplicationLogger(config Config) (ApplicationLogger, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	impl := &applicationLoggerImpl{config: config}

	switch config.Output {
	case "buffer":
		impl.buffer = &bytes.Buffer{}
		impl.logger = log.New(impl.buffer, "", 0)
	case "stderr":
		impl.logger = log.New(os.Stderr, "", 0)
	default:
		impl.logger = log.New(os.Stdout, "", 0)
	}

	return impl, nil
}

// validateConfig validates logger configuration.
func validateConfig(config Config) error {
	if _, ok := levelRank[strings.ToUpper(config.Level)]; !ok {
		return fmt.Errorf("invalid log level: %s", config.Level)
	}

	switch config.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	switch config.Output {
	case "stdout", "stderr", "buffer", "":
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	return nil
}

// shouldLog determines whether a message at the given level is emitted.
func (l *applicationLoggerImpl) shouldLog(level string) bool {
	return levelRank[level] >= levelRank[strings.ToUpper(l.config.Level)]
}

func (l *applicationLoggerImpl) Debug(ctx context.Context, message string, fields Fields) {
	l.write(ctx, "DEBUG", message, "", fields)
}

func (l *applicationLoggerImpl) Info(ctx context.Context, message string, fields Fields) {
	l.write(ctx, "INFO", message, "", fields)
}

func (l *applicationLoggerImpl) Warn(ctx context.Context, message string, fields Fields) {
	l.write(ctx, "WARN", message, "", fields)
}

func (l *applicationLoggerImpl) Error(ctx context.Context, message string, fields Fields) {
	l.write(ctx, "ERROR", message, "", fields)
}

func (l *applicationLoggerImpl) ErrorWithError(ctx context.Context, err error, message string, fields Fields) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	l.write(ctx, "ERROR", message, errMsg, fields)
}

// LogPerformance logs the duration of an operation at INFO level.
func (l *applicationLoggerImpl) LogPerformance(
	ctx context.Context,
	operation string,
	duration time.Duration,
	fields Fields,
) {
	if fields == nil {
		fields = Fields{}
	}
	fields["operation"] = operation
	fields["duration"] = duration.String()
	l.write(ctx, "INFO", "operation completed", "", fields)
}

// WithComponent returns a logger that tags entries with a component name.
func (l *applicationLoggerImpl) WithComponent(component string) ApplicationLogger {
	clone := *l
	clone.component = component
	return &clone
}

// write builds and emits a single log entry.
func (l *applicationLoggerImpl) write(ctx context.Context, level, message, errMsg string, fields Fields) {
	if !l.shouldLog(level) {
		return
	}

	entry := LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Level:         level,
		Message:       message,
		CorrelationID: CorrelationIDFromContext(ctx),
		Component:     l.component,
		Error:         errMsg,
	}
	if len(fields) > 0 {
		entry.Metadata = fields
	}

	if l.config.Format == "text" {
		l.logger.Print(formatTextEntry(entry))
		return
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		// Fall back to a plain line rather than dropping the event.
		l.logger.Printf("%s %s %s (marshal error: %v)", entry.Timestamp, level, message, err)
		return
	}
	l.logger.Print(string(encoded))
}

// formatTextEntry renders a log entry as a single human-readable line.
func formatTextEntry(entry LogEntry) string {
	var sb strings.Builder
	sb.WriteString(entry.Timestamp)
	sb.WriteString(" ")
	sb.WriteString(entry.Level)
	if entry.Component != "" {
		sb.WriteString(" [")
		sb.WriteString(entry.Component)
		sb.WriteString("]")
	}
	sb.WriteString(" ")
	sb.WriteString(entry.Message)
	if entry.Error != "" {
		sb.WriteString(" error=")
		sb.WriteString(entry.Error)
	}
	for key, value := range entry.Metadata {
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprintf("%v", value))
	}
	return sb.String()
}

// BufferContents returns buffered output for a logger created with the
// "buffer" output, or "" for other outputs. Exposed for tests.
func BufferContents(logger ApplicationLogger) string {
	impl, ok := logger.(*applicationLoggerImpl)
	if !ok || impl.buffer == nil {
		return ""
	}
	return impl.buffer.String()
}
