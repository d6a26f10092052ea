package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// -----------------------------------------------------------------------------

// Level ordering for filtering. Unknown levels fall back to INFO.
var levelOrder = map[string]int{
	"DEBUG":    0,
	"INFO":     1,
	"WARNING":  2,
	"ERROR":    3,
	"CRITICAL": 4,
}

// -----------------------------------------------------------------------------

// Logger provides named, leveled logging on top of the standard library.
type Logger struct {
	name     string
	minLevel int
	logger   *log.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a Logger. Messages below the given level are dropped.
func NewLogger(name, level string) *Logger {
	min, ok := levelOrder[strings.ToUpper(level)]
	if !ok {
		min = levelOrder["INFO"]
	}
	return &Logger{
		name:     name,
		minLevel: min,
		logger:   log.New(os.Stdout, "", log.LstdFlags),
	}
}

// -----------------------------------------------------------------------------

// SetOutput redirects log output (used by tests).
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// -----------------------------------------------------------------------------

func (l *Logger) write(level, format string, args ...interface{}) {
	if levelOrder[level] < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, level, msg)
}

// -----------------------------------------------------------------------------

// Debug logs debugging messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write("DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.write("INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs warning messages
func (l *Logger) Warning(format string, args ...interface{}) {
	l.write("WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.write("ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.write("CRITICAL", format, args...)
	os.Exit(1)
}
