// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelColors = map[LogLevel]string{
	DEBUG: colorGray,
	INFO:  colorGreen,
	WARN:  colorYellow,
	ERROR: colorRed,
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a level name (case-insensitive) to a LogLevel.
// Unknown names fall back to INFO and report false.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO", "":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	}
	return INFO, false
}

// sink is one destination with one *log.Logger per level.
type sink struct {
	loggers map[LogLevel]*log.Logger
}

func newSink(w io.Writer, colored bool) *sink {
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	s := &sink{loggers: make(map[LogLevel]*log.Logger, len(levelNames))}
	for level, name := range levelNames {
		prefix := fmt.Sprintf("[%-5s] ", name)
		if colored {
			prefix = levelColors[level] + prefix + colorReset
		}
		s.loggers[level] = log.New(w, prefix, flags)
	}
	return s
}

type Logger struct {
	console  *sink
	file     *sink
	handle   *os.File
	minLevel LogLevel
}

var (
	defaultLogger *Logger
	mu            sync.Mutex
)

func current() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = &Logger{console: newSink(os.Stdout, true), minLevel: INFO}
	}
	return defaultLogger
}

// Init configures the package logger. Console output goes to stdout with
// colours; when filename is non-empty the same lines are appended to that
// file without colours.
func Init(filename string, level LogLevel) error {
	l := &Logger{console: newSink(os.Stdout, true), minLevel: level}

	if filename != "" {
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.handle = file
		l.file = newSink(file, false)
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil && defaultLogger.handle != nil {
		defaultLogger.handle.Close()
	}
	defaultLogger = l
	return nil
}

// SetOutput redirects console output to w without colours. Used by tests
// to capture what the batch prints.
func SetOutput(w io.Writer) {
	l := current()
	mu.Lock()
	defer mu.Unlock()
	l.console = newSink(w, false)
}

// SetLevel sets the minimum log level
func SetLevel(level LogLevel) {
	l := current()
	mu.Lock()
	defer mu.Unlock()
	l.minLevel = level
}

// Close closes the log file if one is open
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil && defaultLogger.handle != nil {
		defaultLogger.handle.Close()
		defaultLogger.handle = nil
		defaultLogger.file = nil
	}
}

func (l *Logger) output(level LogLevel, msg string) {
	mu.Lock()
	defer mu.Unlock()

	if level < l.minLevel {
		return
	}
	if l.console != nil {
		l.console.loggers[level].Output(3, msg)
	}
	if l.file != nil {
		l.file.loggers[level].Output(3, msg)
	}
}

func Debug(v ...interface{}) { current().output(DEBUG, fmt.Sprint(v...)) }

func Debugf(format string, v ...interface{}) { current().output(DEBUG, fmt.Sprintf(format, v...)) }

func Info(v ...interface{}) { current().output(INFO, fmt.Sprint(v...)) }

func Infof(format string, v ...interface{}) { current().output(INFO, fmt.Sprintf(format, v...)) }

func Warn(v ...interface{}) { current().output(WARN, fmt.Sprint(v...)) }

func Warnf(format string, v ...interface{}) { current().output(WARN, fmt.Sprintf(format, v...)) }

func Error(v ...interface{}) { current().output(ERROR, fmt.Sprint(v...)) }

func Errorf(format string, v ...interface{}) { current().output(ERROR, fmt.Sprintf(format, v...)) }
