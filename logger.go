package objcache

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is the severity of a log message, adapted from the teacher's
// kernel/utils leveled logger.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	levelSilent // above Error; used by NopLogger to suppress everything
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Field is a structured key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Err(err error) Field            { return Field{Key: "error", Value: err} }

func (f Field) format() string {
	switch v := f.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case error:
		return fmt.Sprintf("%q", v.Error())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Logger is the ambient diagnostic logger. Nothing on the core Alloc/Free
// path writes to it — spec.md §1 lists logging as an out-of-scope
// external collaborator for the core allocator. Within the package only
// the opt-in resiliency wrapper writes to it; the registry does not log.
type Logger struct {
	mu        sync.Mutex
	level     LogLevel
	component string
	output    io.Writer
}

// NewLogger builds a logger writing to w at the given minimum level.
func NewLogger(component string, level LogLevel, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{level: level, component: component, output: w}
}

// NopLogger discards everything; it is the Cache default.
func NopLogger() *Logger {
	return &Logger{level: levelSilent, output: io.Discard}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	if l == nil || level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteString("] [")
	b.WriteString(fmt.Sprintf("%-5s", levelNames[level]))
	b.WriteString("]")
	if l.component != "" {
		b.WriteString(" [")
		b.WriteString(l.component)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f.Key)
		b.WriteString("=")
		b.WriteString(f.format())
	}
	b.WriteString("\n")

	_, _ = l.output.Write([]byte(b.String()))
}
